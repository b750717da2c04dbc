package storage

import (
	"context"
	"encoding/json"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/skillmatch/internal/skilltree"
)

func candidateTree() *skilltree.Node {
	return skilltree.Build(skilltree.Data{
		Technical:  []skilltree.Category{{Key: skilltree.KeyProgrammingLanguages, Skills: []string{"Go", "Python"}}},
		SoftSkills: []string{"Mentoring"},
	})
}

func jobTree(id int64, title string) *skilltree.Node {
	return skilltree.BuildJob(
		skilltree.Data{Technical: []skilltree.Category{{Key: skilltree.KeyTools, Skills: []string{"Docker"}}}},
		[]string{"3+ years of backend development"},
		skilltree.JobInfo{ID: id, Title: title, Location: "Remote"},
	)
}

func treeJSON(t *testing.T, tree *skilltree.Node) string {
	t.Helper()
	data, err := json.Marshal(tree)
	require.NoError(t, err)
	return string(data)
}

// exerciseStore runs the behaviour every backend shares.
func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Read(ctx, Candidate, "0123456789abcdef")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = store.Read(ctx, Job, "42")
	require.ErrorIs(t, err, ErrNotFound)

	tree := candidateTree()
	require.NoError(t, store.Write(ctx, Candidate, "0123456789abcdef", tree))
	// Writing the same content twice is harmless.
	require.NoError(t, store.Write(ctx, Candidate, "0123456789abcdef", tree))

	got, err := store.Read(ctx, Candidate, "0123456789abcdef")
	require.NoError(t, err)
	assert.Equal(t, treeJSON(t, tree), treeJSON(t, got))

	require.NoError(t, store.Write(ctx, Job, "42", jobTree(42, "Backend Engineer")))
	require.NoError(t, store.Write(ctx, Job, "7", jobTree(7, "Data Engineer")))

	job, err := store.Read(ctx, Job, "42")
	require.NoError(t, err)
	require.NotNil(t, job.Job())
	assert.Equal(t, "Backend Engineer", job.Job().Title)
	assert.Equal(t, []string{"3+ years of backend development"}, skilltree.Requirements(job))

	entries, err := store.List(ctx, Job)
	require.NoError(t, err)
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	sort.Strings(ids)
	assert.Equal(t, []string{"42", "7"}, ids)

	candidates, err := store.List(ctx, Candidate)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "0123456789abcdef", candidates[0].ID)

	assert.Error(t, store.Write(ctx, Candidate, "", tree))
	assert.Error(t, store.Write(ctx, Candidate, "../escape", tree))
	assert.Error(t, store.Write(ctx, Category("resume"), "x", tree))
	assert.Error(t, store.Write(ctx, Candidate, "nil-tree", nil))
}

func TestIDFromFileName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		category Category
		name     string
		id       string
		ok       bool
	}{
		{Job, "job_4374125007_skill_tree.json", "4374125007", true},
		{Job, "job_42_post-training.json", "42", true},
		{Candidate, "candidate_0123456789abcdef_skill_tree.json", "0123456789abcdef", true},
		{Candidate, "job_42_skill_tree.json", "", false},
		{Job, "job_42_skill_tree.yaml", "", false},
		{Job, ".tmp-123", "", false},
	}

	for _, tt := range tests {
		id, ok := idFromFileName(tt.category, tt.name)
		assert.Equal(t, tt.ok, ok, tt.name)
		assert.Equal(t, tt.id, id, tt.name)
	}
}
