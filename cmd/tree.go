package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spigell/skillmatch/internal/skilltree"
)

const (
	treeJob       = "job"
	treeCandidate = "candidate"
)

var treeCmd = &cobra.Command{
	Use:       "tree job|candidate ID",
	Short:     "Print a stored skill tree",
	Long:      "Print a stored skill tree. Unknown jobs fall back to the default job tree.",
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{treeJob, treeCandidate},
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, id := args[0], args[1]
		if kind != treeJob && kind != treeCandidate {
			return fmt.Errorf("unknown tree kind %q, want %s or %s", kind, treeJob, treeCandidate)
		}

		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		var tree *skilltree.Node
		if kind == treeJob {
			tree, err = a.service.JobTree(cmd.Context(), id)
		} else {
			tree, err = a.service.CandidateTree(cmd.Context(), id)
		}
		if err != nil {
			return err
		}

		if tree == nil {
			return printNotFound(cmd.OutOrStdout())
		}
		return printJSON(cmd.OutOrStdout(), tree)
	},
}

func init() {
	rootCmd.AddCommand(treeCmd)
}
