package cmd

import (
	"github.com/spf13/cobra"

	"github.com/spigell/skillmatch/internal/ingest"
)

var ingestJobCmd = &cobra.Command{
	Use:   "ingest-job",
	Short: "Build and store the skill tree of a job posting",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		flags := cmd.Flags()
		req := ingest.Request{}
		req.ID, _ = flags.GetInt64("id")
		req.Title, _ = flags.GetString("title")
		req.Location, _ = flags.GetString("location")
		req.URL, _ = flags.GetString("url")
		req.File, _ = flags.GetString("file")

		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		tree, err := a.service.IngestJob(cmd.Context(), req)
		if err != nil {
			return err
		}

		return printJSON(cmd.OutOrStdout(), tree)
	},
}

func init() {
	rootCmd.AddCommand(ingestJobCmd)

	ingestJobCmd.Flags().Int64("id", 0, "numeric job id")
	ingestJobCmd.Flags().String("title", "", "job title")
	ingestJobCmd.Flags().String("location", "", "job location")
	ingestJobCmd.Flags().String("url", "", "url of the job posting")
	ingestJobCmd.Flags().String("file", "", "local file with the job posting (html, pdf, docx or text)")

	ingestJobCmd.MarkFlagRequired("id")
	ingestJobCmd.MarkFlagRequired("title")
	ingestJobCmd.MarkFlagsOneRequired("url", "file")
	ingestJobCmd.MarkFlagsMutuallyExclusive("url", "file")
}
