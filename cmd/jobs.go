package cmd

import (
	"github.com/spf13/cobra"

	"github.com/spigell/skillmatch/internal/screening"
)

type jobsResponse struct {
	Jobs []screening.JobSummary `json:"jobs"`
}

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List the stored jobs sorted by title",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		jobs, err := a.service.ListJobs(cmd.Context())
		if err != nil {
			return err
		}

		return printJSON(cmd.OutOrStdout(), jobsResponse{Jobs: jobs})
	},
}

func init() {
	rootCmd.AddCommand(jobsCmd)
}
