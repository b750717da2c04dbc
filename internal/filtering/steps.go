package filtering

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/skillmatch/internal/headhunter"
	"github.com/spigell/skillmatch/internal/storage"
)

const forceFlagSetMsg = "force flag is set"

type archivedFilter struct{}

// NewArchived creates a filter that removes archived vacancies.
func NewArchived() Filter {
	return &archivedFilter{}
}

func (f *archivedFilter) Name() string { return "archived" }

func (f *archivedFilter) IsEnabled() bool { return true }

func (f *archivedFilter) Apply(_ context.Context, v *headhunter.Vacancies) (*headhunter.Vacancies, Step, error) {
	initial := v.Len()
	excluded := v.ExcludeFunc(func(vacancy *headhunter.Vacancy) bool { return vacancy.Archived })

	return v, Step{Initial: initial, Dropped: len(excluded), Left: v.Len()}, nil
}

type withTestFilter struct {
	enabled bool
}

// NewWithTest creates a filter that removes vacancies requiring a test task.
func NewWithTest(enabled bool) Filter {
	return &withTestFilter{enabled: enabled}
}

func (f *withTestFilter) Name() string { return "with_test" }

func (f *withTestFilter) IsEnabled() bool { return f.enabled }

func (f *withTestFilter) Apply(_ context.Context, v *headhunter.Vacancies) (*headhunter.Vacancies, Step, error) {
	initial := v.Len()
	excluded := v.ExcludeFunc(func(vacancy *headhunter.Vacancy) bool { return vacancy.HasTest })

	return v, Step{Initial: initial, Dropped: len(excluded), Left: v.Len()}, nil
}

type employersFilter struct {
	employers []string
}

// NewExcludedEmployers creates a filter that removes vacancies of the given employer ids.
func NewExcludedEmployers(employers []string) Filter {
	return &employersFilter{
		employers: employers,
	}
}

func (f *employersFilter) Name() string { return "employers" }

func (f *employersFilter) IsEnabled() bool { return len(f.employers) > 0 }

func (f *employersFilter) Apply(_ context.Context, v *headhunter.Vacancies) (*headhunter.Vacancies, Step, error) {
	initial := v.Len()
	excluded := v.Exclude(headhunter.VacancyEmployerIDField, f.employers)

	return v, Step{Initial: initial, Dropped: len(excluded), Left: v.Len()}, nil
}

type storedFilter struct {
	store  storage.Store
	logger *zap.Logger
	ignore bool
}

// NewAlreadyStored creates a filter that removes vacancies whose job tree is
// already stored. force keeps them so they get ingested again.
func NewAlreadyStored(store storage.Store, logger *zap.Logger, force bool) Filter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &storedFilter{store: store, logger: logger, ignore: force}
}

func (f *storedFilter) Name() string { return "already_stored" }

func (f *storedFilter) IsEnabled() bool { return f.store != nil }

func (f *storedFilter) Apply(ctx context.Context, v *headhunter.Vacancies) (*headhunter.Vacancies, Step, error) {
	initial := v.Len()
	if f.ignore {
		f.logger.Info("keeping already stored vacancies", zap.String("reason", forceFlagSetMsg))
		return v, Step{Initial: initial, Dropped: 0, Left: v.Len()}, nil
	}

	var lookupErr error
	excluded := v.ExcludeFunc(func(vacancy *headhunter.Vacancy) bool {
		if lookupErr != nil {
			return false
		}
		_, err := f.store.Read(ctx, storage.Job, vacancy.ID)
		switch {
		case err == nil:
			return true
		case errors.Is(err, storage.ErrNotFound):
			return false
		default:
			lookupErr = fmt.Errorf("lookup vacancy %s: %w", vacancy.ID, err)
			return false
		}
	})
	if lookupErr != nil {
		return v, Step{}, lookupErr
	}

	if len(excluded) > 0 {
		f.logger.Info("excluding vacancies that are already stored",
			zap.Strings("excluded_vacancies", excluded),
			zap.Int("vacancies_left", v.Len()),
		)
	}

	return v, Step{Initial: initial, Dropped: len(excluded), Left: v.Len()}, nil
}
