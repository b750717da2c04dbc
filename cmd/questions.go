package cmd

import (
	"github.com/spf13/cobra"

	"github.com/spigell/skillmatch/internal/screening"
)

type questionsResponse struct {
	Questions []string `json:"questions"`
}

var questionsCmd = &cobra.Command{
	Use:   "questions",
	Short: "Generate interview questions for a job and a candidate",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		flags := cmd.Flags()
		req := screening.QuestionsRequest{}
		req.JobID, _ = flags.GetString("job-id")
		req.CandidateID, _ = flags.GetString("candidate-id")
		req.JobTitle, _ = flags.GetString("title")
		req.Location, _ = flags.GetString("location")
		req.Skills, _ = flags.GetString("skills")

		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		questions, err := a.service.Questions(cmd.Context(), req)
		if err != nil {
			return err
		}

		return printJSON(cmd.OutOrStdout(), questionsResponse{Questions: questions})
	},
}

func init() {
	rootCmd.AddCommand(questionsCmd)

	questionsCmd.Flags().String("job-id", "", "job tree to base the questions on")
	questionsCmd.Flags().String("candidate-id", "", "candidate tree to tailor the questions to")
	questionsCmd.Flags().String("title", "", "job title. Defaults to the title of the job tree")
	questionsCmd.Flags().String("location", "", "job location. Defaults to the location of the job tree")
	questionsCmd.Flags().String("skills", "", "comma separated skills hint")
}
