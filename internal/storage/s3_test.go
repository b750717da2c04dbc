package storage

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string][]byte)}
}

func (f *fakeS3) GetObject(_ context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[aws.ToString(params.Key)]
	if !ok {
		return nil, &types.NoSuchKey{Message: aws.String("missing")}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(params.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(_ context.Context, params *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var keys []string
	for key := range f.objects {
		if strings.HasPrefix(key, aws.ToString(params.Prefix)) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(false)}
	for _, key := range keys {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(key)})
	}
	return out, nil
}

func TestS3Store(t *testing.T) {
	exerciseStore(t, newS3Store(newFakeS3(), "trees", "skillmatch/"))
}

func TestS3StoreLayout(t *testing.T) {
	client := newFakeS3()
	store := newS3Store(client, "trees", "/prod/")

	require.NoError(t, store.Write(context.Background(), Candidate, "abc", candidateTree()))
	require.NoError(t, store.Write(context.Background(), Job, "42", jobTree(42, "Backend Engineer")))

	assert.Contains(t, client.objects, "prod/candidate_skill_trees/candidate_abc_skill_tree.json")
	assert.Contains(t, client.objects, "prod/job_skill_trees/job_42_skill_tree.json")

	client.objects["prod/job_skill_trees/job_43_post_training.json"] = client.objects["prod/job_skill_trees/job_42_skill_tree.json"]
	tree, err := store.Read(context.Background(), Job, "43")
	require.NoError(t, err)
	assert.Equal(t, "Backend Engineer", tree.Job().Title)
}
