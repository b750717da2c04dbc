package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/spigell/skillmatch/internal/screening"
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Match a stored candidate against a job",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		jobID, _ := cmd.Flags().GetString("job-id")
		candidateID, _ := cmd.Flags().GetString("candidate-id")

		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		result, err := a.service.Match(cmd.Context(), jobID, candidateID)
		if errors.Is(err, screening.ErrCandidateNotFound) {
			return printNotFound(cmd.OutOrStdout())
		}
		if err != nil {
			return err
		}

		return printJSON(cmd.OutOrStdout(), result)
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().String("job-id", "", "job to match against. The default job is used when empty or unknown")
	matchCmd.Flags().String("candidate-id", "", "file id returned by analyze")
	matchCmd.MarkFlagRequired("candidate-id")
}
