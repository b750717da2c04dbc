package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spigell/skillmatch/internal/skilltree"
	"github.com/spigell/skillmatch/internal/storage"
)

// runCommand executes the root command against a file store in a temporary
// directory with the oracles disabled.
func runCommand(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()

	t.Setenv("SKILLMATCH_STORAGE_DIR", dir)
	t.Setenv("SKILLMATCH_AI_PROVIDER", providerNone)
	t.Setenv("SKILLMATCH_EVENTS_URL", "")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := runCommand(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Equal(t, "skillmatch version: unknown\n", out)
}

func TestTreeCommand(t *testing.T) {
	dir := t.TempDir()

	out, err := runCommand(t, dir, "tree", "job", "12345")
	require.NoError(t, err)

	tree, err := skilltree.Parse([]byte(out))
	require.NoError(t, err)
	require.NotNil(t, tree.Job())
	assert.Equal(t, int64(4374125007), tree.Job().ID, "unknown jobs fall back to the default job tree")

	out, err = runCommand(t, dir, "tree", "candidate", "deadbeef")
	require.ErrorIs(t, err, errNotFound)
	assert.JSONEq(t, `{"error": "Skill tree not found"}`, out)

	_, err = runCommand(t, dir, "tree", "resume", "1")
	require.Error(t, err)
}

func TestIngestAndListJobs(t *testing.T) {
	dir := t.TempDir()
	posting := filepath.Join(t.TempDir(), "posting.txt")
	require.NoError(t, os.WriteFile(posting, []byte(`Senior Go Engineer

We build our platform with Go, PostgreSQL and Kubernetes.

Requirements:
- 5+ years of backend development
- Experience with Docker
`), 0o644))

	out, err := runCommand(t, dir, "ingest-job", "--id", "77", "--title", "Go Engineer", "--location", "Remote", "--file", posting)
	require.NoError(t, err)

	tree, err := skilltree.Parse([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, &skilltree.JobInfo{ID: 77, Title: "Go Engineer", Location: "Remote"}, tree.Job())
	assert.Contains(t, skilltree.Requirements(tree), "5+ years of backend development")

	store, err := storage.NewFileStore(dir, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, store.Write(context.Background(), storage.Job, "5",
		skilltree.NewRoot(&skilltree.JobInfo{ID: 5, Title: "Data Engineer"}, skilltree.NewSkill("Spark"))))

	out, err = runCommand(t, dir, "jobs")
	require.NoError(t, err)

	var listed jobsResponse
	require.NoError(t, json.Unmarshal([]byte(out), &listed))
	require.Len(t, listed.Jobs, 2)
	assert.Equal(t, "Data Engineer", listed.Jobs[0].JobTitle)
	assert.Equal(t, int64(77), listed.Jobs[1].JobID)
}

func TestMatchCommandCandidateNotFound(t *testing.T) {
	out, err := runCommand(t, t.TempDir(), "match", "--candidate-id", "missing")
	require.ErrorIs(t, err, errNotFound)
	assert.JSONEq(t, `{"error": "Skill tree not found"}`, out)
}

func TestQuestionsCommandFallback(t *testing.T) {
	out, err := runCommand(t, t.TempDir(), "questions", "--title", "SRE", "--skills", "linux, networking")
	require.NoError(t, err)

	var resp questionsResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.NotEmpty(t, resp.Questions)
}
