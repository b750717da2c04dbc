// Package screening wires extraction, analysis, caching and matching into the
// operations offered by the command line.
package screening

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/skillmatch/internal/analysis"
	"github.com/spigell/skillmatch/internal/cache"
	"github.com/spigell/skillmatch/internal/events"
	"github.com/spigell/skillmatch/internal/extract"
	"github.com/spigell/skillmatch/internal/ingest"
	"github.com/spigell/skillmatch/internal/logger"
	"github.com/spigell/skillmatch/internal/matching"
	"github.com/spigell/skillmatch/internal/questions"
	"github.com/spigell/skillmatch/internal/skilltree"
	"github.com/spigell/skillmatch/internal/storage"
)

const unknownJobTitle = "Unknown"

var (
	// ErrEmptyDocument is returned for uploads without content.
	ErrEmptyDocument = errors.New("no file content provided")
	// ErrCandidateNotFound is returned when an operation needs a candidate tree that is not stored.
	ErrCandidateNotFound = errors.New("candidate skill tree not found")
)

// Deps are the collaborators of a Service. Store, Cache, Analyzer, Engine and
// Questions are required.
type Deps struct {
	Store     storage.Store
	Cache     *cache.Cache
	Analyzer  *analysis.Analyzer
	Engine    *matching.Engine
	Questions *questions.Generator
	// Ingester is only needed by IngestJob.
	Ingester *ingest.Ingester
	// Events defaults to events.Nop.
	Events events.Publisher
	// DefaultJob is served when a job tree is missing.
	DefaultJob *skilltree.Node
	Logger     *zap.Logger
}

// Service implements the screening operations.
type Service struct {
	store      storage.Store
	cache      *cache.Cache
	analyzer   *analysis.Analyzer
	engine     *matching.Engine
	questions  *questions.Generator
	ingester   *ingest.Ingester
	events     events.Publisher
	defaultJob *skilltree.Node
	logger     *zap.Logger
}

// Report is the outcome of AnalyzeResume.
type Report struct {
	Success        bool             `json:"success"`
	SkillTree      *skilltree.Node  `json:"skill_tree"`
	FileID         string           `json:"file_id"`
	SimilarityData *matching.Result `json:"similarity_data"`
	Cached         bool             `json:"-"`
}

// JobSummary is a listed job.
type JobSummary struct {
	JobID    int64  `json:"job_id"`
	JobTitle string `json:"job_title"`
	Location string `json:"location"`
}

// QuestionsRequest selects the trees and hints used for question generation.
// An empty JobID means no job tree.
type QuestionsRequest struct {
	JobID       string
	CandidateID string
	JobTitle    string
	Location    string
	Skills      string
}

// New creates a Service.
func New(deps Deps) (*Service, error) {
	switch {
	case deps.Store == nil:
		return nil, errors.New("screening: store is required")
	case deps.Cache == nil:
		return nil, errors.New("screening: cache is required")
	case deps.Analyzer == nil:
		return nil, errors.New("screening: analyzer is required")
	case deps.Engine == nil:
		return nil, errors.New("screening: matching engine is required")
	case deps.Questions == nil:
		return nil, errors.New("screening: question generator is required")
	}

	if deps.Events == nil {
		deps.Events = events.Nop{}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	return &Service{
		store:      deps.Store,
		cache:      deps.Cache,
		analyzer:   deps.Analyzer,
		engine:     deps.Engine,
		questions:  deps.Questions,
		ingester:   deps.Ingester,
		events:     deps.Events,
		defaultJob: deps.DefaultJob,
		logger:     deps.Logger,
	}, nil
}

// AnalyzeResume builds or loads the candidate tree of the uploaded document
// and matches it against the job jobID, or the default job.
func (s *Service) AnalyzeResume(ctx context.Context, name string, data []byte, jobID string) (*Report, error) {
	if len(data) == 0 {
		return nil, ErrEmptyDocument
	}

	log := s.requestLogger("analyze_resume").With(zap.String("file_name", name))

	entry, err := s.cache.Do(ctx, data, func(ctx context.Context) (*skilltree.Node, error) {
		text, err := extract.Document(name, data)
		if err != nil {
			return nil, err
		}
		log.Debug("resume text extracted", zap.Int("length", len(text)))
		return skilltree.Build(s.analyzer.Resume(ctx, text)), nil
	})
	if err != nil {
		return nil, err
	}

	log = log.With(zap.String("file_id", entry.ID))
	if entry.Cached {
		log.Info("found existing skill tree for resume")
	} else {
		log.Info("generated new skill tree for resume")
	}

	job, err := s.JobTree(ctx, jobID)
	if err != nil {
		return nil, err
	}

	result := s.engine.Match(ctx, skilltree.Flatten(job), skilltree.Flatten(entry.Tree))

	s.publish(ctx, log, events.New(events.ResumeAnalyzed, entry.ID, map[string]any{
		"cached":  entry.Cached,
		"job_id":  jobID,
		"matches": len(result.Matches),
	}))

	return &Report{
		Success:        true,
		SkillTree:      entry.Tree,
		FileID:         entry.ID,
		SimilarityData: result,
		Cached:         entry.Cached,
	}, nil
}

// JobTree returns the stored tree of job id. Unknown or empty ids yield the
// default job tree.
func (s *Service) JobTree(ctx context.Context, id string) (*skilltree.Node, error) {
	if id == "" {
		return s.defaultJob, nil
	}

	tree, err := s.store.Read(ctx, storage.Job, id)
	if errors.Is(err, storage.ErrNotFound) {
		s.logger.Debug("job skill tree not found, using default", zap.String("job_id", id))
		return s.defaultJob, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read job %s: %w", id, err)
	}
	return tree, nil
}

// CandidateTree returns the stored candidate tree, or nil when there is none.
func (s *Service) CandidateTree(ctx context.Context, fileID string) (*skilltree.Node, error) {
	tree, err := s.store.Read(ctx, storage.Candidate, fileID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read candidate %s: %w", fileID, err)
	}
	return tree, nil
}

// ListJobs lists stored job trees that carry job information, sorted by title.
func (s *Service) ListJobs(ctx context.Context) ([]JobSummary, error) {
	entries, err := s.store.List(ctx, storage.Job)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}

	jobs := make([]JobSummary, 0, len(entries))
	for _, entry := range entries {
		info := entry.Tree.Job()
		if info == nil || info.ID == 0 {
			s.logger.Debug("skipping job tree without job id", zap.String("id", entry.ID))
			continue
		}
		title := info.Title
		if title == "" {
			title = unknownJobTitle
		}
		jobs = append(jobs, JobSummary{JobID: info.ID, JobTitle: title, Location: info.Location})
	}

	slices.SortStableFunc(jobs, func(a, b JobSummary) int {
		return cmp.Compare(a.JobTitle, b.JobTitle)
	})
	return jobs, nil
}

// Match compares the stored candidate tree with the job tree.
func (s *Service) Match(ctx context.Context, jobID, candidateID string) (*matching.Result, error) {
	candidate, err := s.CandidateTree(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	if candidate == nil {
		return nil, fmt.Errorf("%w: %s", ErrCandidateNotFound, candidateID)
	}

	job, err := s.JobTree(ctx, jobID)
	if err != nil {
		return nil, err
	}

	log := s.requestLogger("match").With(zap.String("job_id", jobID), zap.String("file_id", candidateID))
	result := s.engine.Match(ctx, skilltree.Flatten(job), skilltree.Flatten(candidate))
	log.Info("skills matched",
		zap.Int("matches", len(result.Matches)),
		zap.Int("candidate_only", len(result.CandidateOnly)),
		zap.Int("job_only", len(result.JobOnly)),
	)
	return result, nil
}

// Questions generates interview questions. Title and location default to the
// job information of the job tree.
func (s *Service) Questions(ctx context.Context, req QuestionsRequest) ([]string, error) {
	gen := questions.Request{
		JobTitle:   req.JobTitle,
		Location:   req.Location,
		SkillsHint: req.Skills,
	}

	if req.JobID != "" {
		job, err := s.JobTree(ctx, req.JobID)
		if err != nil {
			return nil, err
		}
		gen.JobTree = job
		if info := job.Job(); info != nil {
			if gen.JobTitle == "" {
				gen.JobTitle = info.Title
			}
			if gen.Location == "" {
				gen.Location = info.Location
			}
		}
	}

	if req.CandidateID != "" {
		candidate, err := s.CandidateTree(ctx, req.CandidateID)
		if err != nil {
			return nil, err
		}
		gen.CandidateTree = candidate
	}

	s.requestLogger("questions").Debug("generating interview questions",
		zap.String("job_id", req.JobID),
		zap.Bool("has_job_tree", gen.JobTree != nil),
		zap.Bool("has_candidate_tree", gen.CandidateTree != nil),
	)

	return s.questions.Generate(ctx, gen), nil
}

// IngestJob ingests a job posting and stores its tree.
func (s *Service) IngestJob(ctx context.Context, req ingest.Request) (*skilltree.Node, error) {
	if s.ingester == nil {
		return nil, errors.New("job ingestion is not configured")
	}

	tree, err := s.ingester.Ingest(ctx, req)
	if err != nil {
		return nil, err
	}

	log := s.requestLogger("ingest_job")
	s.publish(ctx, log, events.New(events.JobIngested, strconv.FormatInt(req.ID, 10), map[string]any{
		"job_title": req.Title,
		"location":  req.Location,
	}))
	return tree, nil
}

func (s *Service) requestLogger(operation string) *zap.Logger {
	return logger.WithRequest(s.logger, operation, uuid.NewString())
}

func (s *Service) publish(ctx context.Context, log *zap.Logger, event events.Event) {
	if err := s.events.Publish(ctx, event); err != nil {
		log.Warn("failed to publish event", zap.String("event_type", event.Type), zap.Error(err))
	}
}
