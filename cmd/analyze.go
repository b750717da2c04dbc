package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/spigell/skillmatch/internal/screening"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze FILE",
	Short: "Build the skill tree of a resume and match it against a job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return analyze(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().String("job-id", "", "job to match against. The default job is used when empty or unknown")
	analyzeCmd.Flags().BoolP("pick", "p", false, "choose the job from the stored ones")
}

func analyze(cmd *cobra.Command, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading resume: %w", err)
	}

	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()
	jobID, _ := cmd.Flags().GetString("job-id")

	if pick, _ := cmd.Flags().GetBool("pick"); pick {
		jobID, err = pickJob(ctx, a.service)
		if err != nil {
			return err
		}
	}

	report, err := a.service.AnalyzeResume(ctx, filepath.Base(path), data, jobID)
	if err != nil {
		return err
	}

	return printJSON(cmd.OutOrStdout(), report)
}

func pickJob(ctx context.Context, service *screening.Service) (string, error) {
	jobs, err := service.ListJobs(ctx)
	if err != nil {
		return "", err
	}
	if len(jobs) == 0 {
		return "", errors.New("there are no stored jobs to pick from")
	}

	items := make([]string, 0, len(jobs))
	for _, job := range jobs {
		items = append(items, fmt.Sprintf("%d %s / %s", job.JobID, job.JobTitle, job.Location))
	}

	prompt := promptui.Select{
		Label: "Choose a job and press ENTER",
		Items: items,
	}

	i, _, err := prompt.Run()
	if err != nil {
		return "", err
	}

	return strconv.FormatInt(jobs[i].JobID, 10), nil
}
