// Package filtering decides which searched vacancies get ingested.
package filtering

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/skillmatch/internal/headhunter"
)

// Filter represents a single filtering step applied to vacancies.
type Filter interface {
	Name() string
	IsEnabled() bool
	Apply(ctx context.Context, v *headhunter.Vacancies) (*headhunter.Vacancies, Step, error)
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Run executes the supplied filters sequentially and returns what is left.
func Run(ctx context.Context, logger *zap.Logger, steps []Filter, v *headhunter.Vacancies) (*headhunter.Vacancies, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	for _, step := range steps {
		if !step.IsEnabled() {
			logger.Info("filter disabled", zap.String("name", step.Name()))
			continue
		}

		next, info, err := step.Apply(ctx, v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		logger.Info("filter step",
			zap.String("name", step.Name()),
			zap.Int("initial", info.Initial),
			zap.Int("dropped", info.Dropped),
			zap.Int("left", info.Left),
		)

		v = next
	}

	return v, nil
}
