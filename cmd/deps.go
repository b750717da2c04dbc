package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/skillmatch/internal/ai"
	"github.com/spigell/skillmatch/internal/ai/gemini"
	"github.com/spigell/skillmatch/internal/ai/xai"
	"github.com/spigell/skillmatch/internal/analysis"
	"github.com/spigell/skillmatch/internal/cache"
	"github.com/spigell/skillmatch/internal/events"
	"github.com/spigell/skillmatch/internal/fixtures"
	"github.com/spigell/skillmatch/internal/headhunter"
	"github.com/spigell/skillmatch/internal/ingest"
	"github.com/spigell/skillmatch/internal/matching"
	"github.com/spigell/skillmatch/internal/questions"
	"github.com/spigell/skillmatch/internal/screening"
	"github.com/spigell/skillmatch/internal/secrets"
	"github.com/spigell/skillmatch/internal/storage"
)

const (
	providerNone = "none"

	analysisTemperature  = 0.3
	matchingTemperature  = 0.1
	questionsTemperature = 0.7
)

// oracles holds one oracle per use, each with its own temperature.
// Any of them is nil when no provider is configured.
type oracles struct {
	analysis  ai.Oracle
	matching  ai.Oracle
	questions ai.Oracle
}

// application bundles everything a command needs. close releases the storage
// and the events connection.
type application struct {
	config  *Config
	logger  *zap.Logger
	service *screening.Service
	store   storage.Store
	events  events.Publisher
}

func (a *application) close() {
	if err := a.events.Close(); err != nil {
		a.logger.Warn("closing events publisher", zap.Error(err))
	}
	if err := a.store.Close(); err != nil {
		a.logger.Warn("closing storage", zap.Error(err))
	}
}

func newApplication(ctx context.Context, config *Config, logger *zap.Logger) (*application, error) {
	store, err := storage.Open(ctx, config.Storage, logger)
	if err != nil {
		return nil, err
	}

	publisher, err := newPublisher(config.Events, logger)
	if err != nil {
		store.Close()
		return nil, err
	}

	o, err := newOracles(ctx, config.AI, logger)
	if err != nil {
		store.Close()
		publisher.Close()
		return nil, err
	}

	maxLog := config.AI.MaxLogLength
	analyzer := analysis.NewAnalyzer(o.analysis, logger, maxLog)

	service, err := screening.New(screening.Deps{
		Store:      store,
		Cache:      cache.New(store, config.Cache.IDLength, logger),
		Analyzer:   analyzer,
		Engine:     matching.NewEngine(o.matching, logger, maxLog),
		Questions:  questions.NewGenerator(o.questions, logger, maxLog),
		Ingester:   ingest.New(analyzer, store, logger),
		Events:     publisher,
		DefaultJob: fixtures.DefaultJobTree(),
		Logger:     logger,
	})
	if err != nil {
		store.Close()
		publisher.Close()
		return nil, err
	}

	return &application{
		config:  config,
		logger:  logger,
		service: service,
		store:   store,
		events:  publisher,
	}, nil
}

func newPublisher(cfg EventsConfig, logger *zap.Logger) (events.Publisher, error) {
	if cfg.URL == "" {
		return events.Nop{}, nil
	}

	publisher, err := events.Dial(cfg.URL, cfg.Exchange, logger)
	if err != nil {
		return nil, fmt.Errorf("connecting to events broker: %w", err)
	}
	return publisher, nil
}

// newOracles builds the oracles of the selected provider. An empty provider
// picks xai, then gemini, whichever has a key. Without any key the service
// runs on the keyword and overlap fallbacks.
func newOracles(ctx context.Context, cfg AIConfig, logger *zap.Logger) (oracles, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))

	xaiKey, xaiErr := secrets.Load(secrets.Source{
		Name:  "xai api key",
		File:  cfg.XAI.APIKeyFile,
		Value: cfg.XAI.APIKey,
		Env:   "XAI_API_KEY",
	})
	geminiKey, geminiErr := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		File:  cfg.Gemini.APIKeyFile,
		Value: cfg.Gemini.APIKey,
		Env:   "GEMINI_API_KEY",
	})

	if provider == "" {
		switch {
		case xaiErr == nil:
			provider = xai.Provider
		case geminiErr == nil:
			provider = gemini.Provider
		default:
			provider = providerNone
		}
	}

	switch provider {
	case providerNone:
		logger.Warn("no ai provider configured, using fallbacks",
			zap.String("hint", "set XAI_API_KEY or GEMINI_API_KEY"),
		)
		return oracles{}, nil
	case xai.Provider:
		if xaiErr != nil {
			return oracles{}, missingKey(xaiErr, "ai.xai.api-key-file")
		}
		return newXAIOracles(xaiKey, cfg, logger)
	case gemini.Provider:
		if geminiErr != nil {
			return oracles{}, missingKey(geminiErr, "ai.gemini.api-key-file")
		}
		return newGeminiOracles(ctx, geminiKey, cfg, logger)
	default:
		return oracles{}, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}
}

func missingKey(err error, key string) error {
	if errors.Is(err, secrets.ErrNotConfigured) {
		return fmt.Errorf("%w (or %s)", err, key)
	}
	return err
}

func newXAIOracles(apiKey string, cfg AIConfig, logger *zap.Logger) (oracles, error) {
	build := func(temperature float64) (ai.Oracle, error) {
		client, err := xai.New(logger, apiKey, cfg.XAI.Model, cfg.Timeout)
		if err != nil {
			return nil, err
		}
		return ai.Bounded{Oracle: client.WithTemperature(temperature), Timeout: cfg.Timeout}, nil
	}

	return buildOracles(build)
}

func newGeminiOracles(ctx context.Context, apiKey string, cfg AIConfig, logger *zap.Logger) (oracles, error) {
	build := func(temperature float64) (ai.Oracle, error) {
		generator, err := gemini.NewGenerator(ctx, gemini.Config{
			APIKey:     apiKey,
			Model:      cfg.Gemini.Model,
			MaxRetries: cfg.Gemini.MaxRetries,
		}, logger)
		if err != nil {
			return nil, err
		}
		return ai.Bounded{Oracle: generator.WithTemperature(float32(temperature)), Timeout: cfg.Timeout}, nil
	}

	return buildOracles(build)
}

func buildOracles(build func(temperature float64) (ai.Oracle, error)) (oracles, error) {
	var (
		o   oracles
		err error
	)
	if o.analysis, err = build(analysisTemperature); err != nil {
		return oracles{}, err
	}
	if o.matching, err = build(matchingTemperature); err != nil {
		return oracles{}, err
	}
	if o.questions, err = build(questionsTemperature); err != nil {
		return oracles{}, err
	}
	return o, nil
}

// newVacancySource creates the headhunter client used by import-hh.
func newVacancySource(cfg HeadHunterConfig, logger *zap.Logger) (*headhunter.Client, error) {
	var token string
	if strings.TrimSpace(cfg.TokenFile) != "" {
		var err error
		token, err = secrets.Load(secrets.Source{
			Name: "headhunter token",
			File: cfg.TokenFile,
		})
		if err != nil {
			return nil, err
		}
	}

	client := headhunter.New(logger, token)
	if cfg.UserAgent != "" {
		client.UserAgent = cfg.UserAgent
	}
	return client, nil
}
