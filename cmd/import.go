package cmd

import (
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/skillmatch/internal/headhunter"
	"github.com/spigell/skillmatch/internal/screening"
)

var importHHCmd = &cobra.Command{
	Use:   "import-hh",
	Short: "Search vacancies on hh.ru and store their skill trees as jobs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		params, err := searchParams(cmd, a.config.Search)
		if err != nil {
			return err
		}

		source, err := newVacancySource(a.config.HeadHunter, a.logger)
		if err != nil {
			a.logger.Error("loading headhunter token",
				zap.Error(err),
				zap.String("hint", "set HH_TOKEN_FILE environment variable or the 'headhunter.token-file' key in the configuration file"),
			)
			return err
		}

		excluded, _ := cmd.Flags().GetStringSlice("exclude-employer")
		force, _ := cmd.Flags().GetBool("force")
		skipWithTest, _ := cmd.Flags().GetBool("skip-with-test")

		a.logger.Info("starting the search", zap.String("search", params.Text))

		jobs, err := a.service.ImportVacancies(cmd.Context(), source, screening.ImportOptions{
			Search:           params,
			ExcludeEmployers: excluded,
			SkipWithTest:     skipWithTest,
			Force:            force,
		})
		if err != nil {
			return err
		}

		return printJSON(cmd.OutOrStdout(), jobsResponse{Jobs: jobs})
	},
}

func init() {
	rootCmd.AddCommand(importHHCmd)

	importHHCmd.Flags().String("text", "", "search text. Overrides search.text from the config")
	importHHCmd.Flags().IntSlice("area", nil, "area ids to search in. Overrides search.areas from the config")
	importHHCmd.Flags().Int("limit", 20, "maximum number of vacancies to import")
	importHHCmd.Flags().StringSlice("exclude-employer", nil, "employer ids to skip")
	importHHCmd.Flags().Bool("skip-with-test", false, "skip vacancies that require a test task")
	importHHCmd.Flags().BoolP("force", "f", false, "import vacancies whose job tree is already stored")
}

// searchParams merges the search section of the config with the flags.
func searchParams(cmd *cobra.Command, configured *headhunter.SearchParams) (*headhunter.SearchParams, error) {
	params := &headhunter.SearchParams{}
	if configured != nil {
		copied := *configured
		params = &copied
	}

	flags := cmd.Flags()
	if flags.Changed("text") {
		params.Text, _ = flags.GetString("text")
	}
	if flags.Changed("area") {
		params.Areas, _ = flags.GetIntSlice("area")
	}
	params.Limit, _ = flags.GetInt("limit")

	if params.Text == "" {
		return nil, errors.New("search text is required (--text or search.text in the config)")
	}
	return params, nil
}
