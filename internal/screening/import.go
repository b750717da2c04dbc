package screening

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/skillmatch/internal/filtering"
	"github.com/spigell/skillmatch/internal/headhunter"
	"github.com/spigell/skillmatch/internal/ingest"
)

// VacancySource searches a job board.
type VacancySource interface {
	Search(ctx context.Context, params *headhunter.SearchParams) (*headhunter.Vacancies, error)
	Vacancy(ctx context.Context, id string) (*headhunter.Vacancy, error)
}

// ImportOptions controls ImportVacancies.
type ImportOptions struct {
	Search           *headhunter.SearchParams
	ExcludeEmployers []string
	// SkipWithTest drops vacancies that require a test task.
	SkipWithTest bool
	// Force ingests vacancies whose job tree is already stored.
	Force bool
}

// ImportVacancies searches source, filters the results and ingests every
// vacancy left. A vacancy that fails is logged and skipped.
func (s *Service) ImportVacancies(ctx context.Context, source VacancySource, opts ImportOptions) ([]JobSummary, error) {
	if opts.Search == nil {
		return nil, errors.New("search parameters are required")
	}

	log := s.requestLogger("import_vacancies")

	found, err := source.Search(ctx, opts.Search)
	if err != nil {
		return nil, fmt.Errorf("search vacancies: %w", err)
	}
	log.Info("getting vacancies", zap.Int("count", found.Len()))

	steps := []filtering.Filter{
		filtering.NewArchived(),
		filtering.NewWithTest(opts.SkipWithTest),
		filtering.NewExcludedEmployers(opts.ExcludeEmployers),
		filtering.NewAlreadyStored(s.store, log, opts.Force),
	}
	left, err := filtering.Run(ctx, log, steps, found)
	if err != nil {
		return nil, fmt.Errorf("filter vacancies: %w", err)
	}

	imported := make([]JobSummary, 0, left.Len())
	for _, item := range left.Items {
		summary, err := s.importVacancy(ctx, source, item.ID)
		if err != nil {
			log.Warn("skipping vacancy", zap.String("vacancy_id", item.ID), zap.Error(err))
			continue
		}
		imported = append(imported, summary)
	}

	log.Info("vacancies imported", zap.Int("count", len(imported)), zap.Int("skipped", left.Len()-len(imported)))
	return imported, nil
}

func (s *Service) importVacancy(ctx context.Context, source VacancySource, id string) (JobSummary, error) {
	vacancy, err := source.Vacancy(ctx, id)
	if err != nil {
		return JobSummary{}, err
	}

	jobID, err := vacancy.JobID()
	if err != nil {
		return JobSummary{}, err
	}

	text, err := vacancy.PostingText()
	if err != nil {
		return JobSummary{}, err
	}

	req := ingest.Request{
		ID:       jobID,
		Title:    vacancy.Name,
		Location: vacancy.Area.Name,
		Text:     text,
	}
	if _, err := s.IngestJob(ctx, req); err != nil {
		return JobSummary{}, err
	}

	return JobSummary{JobID: jobID, JobTitle: req.Title, Location: req.Location}, nil
}
