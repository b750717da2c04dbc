package screening

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/skillmatch/internal/analysis"
	"github.com/spigell/skillmatch/internal/cache"
	"github.com/spigell/skillmatch/internal/events"
	"github.com/spigell/skillmatch/internal/extract"
	"github.com/spigell/skillmatch/internal/fixtures"
	"github.com/spigell/skillmatch/internal/ingest"
	"github.com/spigell/skillmatch/internal/matching"
	"github.com/spigell/skillmatch/internal/questions"
	"github.com/spigell/skillmatch/internal/skilltree"
	"github.com/spigell/skillmatch/internal/storage"
)

const resume = "Backend developer writing Python and Rust. Ships with Docker."

type recordingPublisher struct {
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event events.Event) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

type fixture struct {
	service   *Service
	store     storage.Store
	publisher *recordingPublisher
}

func newFixture(t *testing.T, log *zap.Logger) fixture {
	t.Helper()

	store, err := storage.NewFileStore(t.TempDir(), log)
	require.NoError(t, err)

	analyzer := analysis.NewAnalyzer(nil, log, 0)
	publisher := &recordingPublisher{}

	service, err := New(Deps{
		Store:      store,
		Cache:      cache.New(store, 0, log),
		Analyzer:   analyzer,
		Engine:     matching.NewEngine(nil, log, 0),
		Questions:  questions.NewGenerator(nil, log, 0),
		Ingester:   ingest.New(analyzer, store, log),
		Events:     publisher,
		DefaultJob: fixtures.DefaultJobTree(),
		Logger:     log,
	})
	require.NoError(t, err)

	return fixture{service: service, store: store, publisher: publisher}
}

func storeJob(t *testing.T, store storage.Store, id int64, title string, skills ...string) {
	t.Helper()
	tree := skilltree.BuildJob(
		skilltree.Data{Technical: []skilltree.Category{{Key: skilltree.KeyTools, Skills: skills}}},
		nil,
		skilltree.JobInfo{ID: id, Title: title, Location: "Remote"},
	)
	require.NoError(t, store.Write(context.Background(), storage.Job, strconv.FormatInt(id, 10), tree))
}

func TestNewRequiresDependencies(t *testing.T) {
	_, err := New(Deps{})
	require.ErrorContains(t, err, "store is required")
}

func TestAnalyzeResumeComputesThenCaches(t *testing.T) {
	f := newFixture(t, zap.NewNop())
	ctx := context.Background()

	report, err := f.service.AnalyzeResume(ctx, "resume.txt", []byte(resume), "")
	require.NoError(t, err)

	assert.True(t, report.Success)
	assert.False(t, report.Cached)
	assert.Equal(t, cache.ContentID([]byte(resume), cache.DefaultIDLength), report.FileID)
	assert.Equal(t, []string{"python", "rust", "docker"}, skilltree.Flatten(report.SkillTree))

	assert.Equal(t, []matching.Match{
		{CandidateSkill: "python", JobSkill: "python", Similarity: matching.Exact},
		{CandidateSkill: "rust", JobSkill: "rust", Similarity: matching.Exact},
	}, report.SimilarityData.Matches)
	assert.Equal(t, []string{"docker"}, report.SimilarityData.CandidateOnly)
	assert.Len(t, report.SimilarityData.JobOnly, 16)

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, events.ResumeAnalyzed, f.publisher.events[0].Type)
	assert.Equal(t, report.FileID, f.publisher.events[0].Subject)

	again, err := f.service.AnalyzeResume(ctx, "renamed.txt", []byte(resume), "")
	require.NoError(t, err)
	assert.True(t, again.Cached)
	assert.Equal(t, report.FileID, again.FileID)
	assert.Equal(t, skilltree.Flatten(report.SkillTree), skilltree.Flatten(again.SkillTree))

	stored, err := f.service.CandidateTree(ctx, report.FileID)
	require.NoError(t, err)
	require.NotNil(t, stored)
}

func TestAnalyzeResumeAgainstStoredJob(t *testing.T) {
	f := newFixture(t, zap.NewNop())
	storeJob(t, f.store, 4, "Platform Engineer", "Docker", "Terraform")

	report, err := f.service.AnalyzeResume(context.Background(), "resume.txt", []byte(resume), "4")
	require.NoError(t, err)

	assert.Equal(t, []matching.Match{
		{CandidateSkill: "docker", JobSkill: "docker", Similarity: matching.Exact},
	}, report.SimilarityData.Matches)
	assert.Equal(t, []string{"python", "rust"}, report.SimilarityData.CandidateOnly)
	assert.Equal(t, []string{"terraform"}, report.SimilarityData.JobOnly)
}

func TestAnalyzeResumeErrors(t *testing.T) {
	f := newFixture(t, zap.NewNop())
	ctx := context.Background()

	_, err := f.service.AnalyzeResume(ctx, "resume.pdf", nil, "")
	assert.ErrorIs(t, err, ErrEmptyDocument)

	_, err = f.service.AnalyzeResume(ctx, "photo.png", []byte("\x89PNG\r\n\x1a\n"), "")
	var extractionErr *extract.ExtractionError
	require.ErrorAs(t, err, &extractionErr)
	assert.ErrorIs(t, err, extract.ErrUnsupported)

	entries, err := f.store.List(ctx, storage.Candidate)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Empty(t, f.publisher.events)
}

func TestAnalyzeResumePublishFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	f := newFixture(t, zap.New(core))
	f.publisher.err = errors.New("broker down")

	report, err := f.service.AnalyzeResume(context.Background(), "resume.txt", []byte(resume), "")
	require.NoError(t, err)
	assert.True(t, report.Success)
	assert.Equal(t, 1, logs.FilterMessage("failed to publish event").Len())
}

func TestJobTree(t *testing.T) {
	f := newFixture(t, zap.NewNop())
	ctx := context.Background()
	storeJob(t, f.store, 3, "SRE", "Linux")

	tree, err := f.service.JobTree(ctx, "3")
	require.NoError(t, err)
	assert.Equal(t, "SRE", tree.Job().Title)

	for _, id := range []string{"", "99"} {
		tree, err := f.service.JobTree(ctx, id)
		require.NoError(t, err)
		assert.Same(t, fixtures.DefaultJobTree(), tree)
	}
}

func TestCandidateTreeMissing(t *testing.T) {
	f := newFixture(t, zap.NewNop())

	tree, err := f.service.CandidateTree(context.Background(), "0123456789abcdef")
	require.NoError(t, err)
	assert.Nil(t, tree)
}

func TestListJobs(t *testing.T) {
	f := newFixture(t, zap.NewNop())
	ctx := context.Background()

	storeJob(t, f.store, 1, "SRE", "Linux")
	storeJob(t, f.store, 2, "Backend Engineer", "Go")
	storeJob(t, f.store, 3, "", "Excel")
	require.NoError(t, f.store.Write(ctx, storage.Job, "9", skilltree.Build(skilltree.Data{SoftSkills: []string{"Patience"}})))

	jobs, err := f.service.ListJobs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []JobSummary{
		{JobID: 2, JobTitle: "Backend Engineer", Location: "Remote"},
		{JobID: 1, JobTitle: "SRE", Location: "Remote"},
		{JobID: 3, JobTitle: "Unknown", Location: "Remote"},
	}, jobs)
}

func TestMatch(t *testing.T) {
	f := newFixture(t, zap.NewNop())
	ctx := context.Background()
	storeJob(t, f.store, 5, "Platform Engineer", "Docker")

	_, err := f.service.Match(ctx, "5", "0123456789abcdef")
	assert.ErrorIs(t, err, ErrCandidateNotFound)

	report, err := f.service.AnalyzeResume(ctx, "resume.txt", []byte(resume), "")
	require.NoError(t, err)

	result, err := f.service.Match(ctx, "5", report.FileID)
	require.NoError(t, err)
	assert.True(t, result.Complete([]string{"docker"}, []string{"python", "rust", "docker"}))
	assert.Equal(t, []string{"python", "rust"}, result.CandidateOnly)
}

func TestQuestions(t *testing.T) {
	f := newFixture(t, zap.NewNop())
	ctx := context.Background()
	storeJob(t, f.store, 6, "Data Engineer", "Spark")

	generic, err := f.service.Questions(ctx, QuestionsRequest{Skills: "Go, , SQL"})
	require.NoError(t, err)
	assert.Equal(t, questions.Fallback("", "Go, , SQL"), generic)
	assert.Len(t, generic, 7)

	tailored, err := f.service.Questions(ctx, QuestionsRequest{JobID: "6"})
	require.NoError(t, err)
	assert.Equal(t, "Can you explain why you are a good fit for our Data Engineer position?", tailored[0])

	titled, err := f.service.Questions(ctx, QuestionsRequest{JobID: "6", JobTitle: "Analytics Engineer"})
	require.NoError(t, err)
	assert.Equal(t, "Can you explain why you are a good fit for our Analytics Engineer position?", titled[0])
}

func TestIngestJob(t *testing.T) {
	f := newFixture(t, zap.NewNop())
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "posting.txt")
	require.NoError(t, os.WriteFile(path, []byte("We use Go and Kubernetes.\n- On-call rotation\n"), 0o644))

	tree, err := f.service.IngestJob(ctx, ingest.Request{ID: 8, Title: "SRE", File: path})
	require.NoError(t, err)
	assert.Equal(t, []string{"On-call rotation"}, skilltree.Requirements(tree))

	stored, err := f.service.JobTree(ctx, "8")
	require.NoError(t, err)
	assert.Equal(t, "SRE", stored.Job().Title)

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, "job.ingested.8", f.publisher.events[0].RoutingKey())
}

func TestIngestJobNotConfigured(t *testing.T) {
	store, err := storage.NewFileStore(t.TempDir(), nil)
	require.NoError(t, err)

	service, err := New(Deps{
		Store:     store,
		Cache:     cache.New(store, 0, nil),
		Analyzer:  analysis.NewAnalyzer(nil, nil, 0),
		Engine:    matching.NewEngine(nil, nil, 0),
		Questions: questions.NewGenerator(nil, nil, 0),
	})
	require.NoError(t, err)

	_, err = service.IngestJob(context.Background(), ingest.Request{ID: 1, Title: "SRE", File: "posting.txt"})
	require.ErrorContains(t, err, "not configured")
}
