package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/spigell/skillmatch/internal/skilltree"
)

type s3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Config describes an S3 compatible bucket. Endpoint and static keys are
// optional and meant for R2, MinIO and similar services.
type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Prefix    string `mapstructure:"prefix"`
	Region    string `mapstructure:"region"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access-key"`
	SecretKey string `mapstructure:"secret-key"`
	PathStyle bool   `mapstructure:"path-style"`
}

// S3Store mirrors the FileStore layout inside a bucket.
type S3Store struct {
	client s3API
	bucket string
	prefix string
}

// NewS3Store loads the AWS configuration and creates the client.
func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, errors.New("s3 bucket is required")
	}

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.PathStyle
	})

	return newS3Store(client, cfg.Bucket, cfg.Prefix), nil
}

func newS3Store(client s3API, bucket, prefix string) *S3Store {
	return &S3Store{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/")}
}

func (s *S3Store) dir(category Category) string {
	if s.prefix == "" {
		return dirName(category) + "/"
	}
	return s.prefix + "/" + dirName(category) + "/"
}

func (s *S3Store) Read(ctx context.Context, category Category, id string) (*skilltree.Node, error) {
	if err := checkKey(category, id); err != nil {
		return nil, err
	}

	key := s.dir(category) + fileName(category, id)
	if category == Job {
		keys, err := s.keys(ctx, s.dir(category)+fmt.Sprintf("job_%s_", id))
		if err != nil {
			return nil, err
		}
		if len(keys) == 0 {
			return nil, ErrNotFound
		}
		key = keys[0]
	}

	return s.get(ctx, key)
}

func (s *S3Store) get(ctx context.Context, key string) (*skilltree.Node, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get object %s: %w", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read object %s: %w", key, err)
	}

	tree, err := skilltree.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("object %s: %w", key, err)
	}
	return tree, nil
}

func (s *S3Store) Write(ctx context.Context, category Category, id string, tree *skilltree.Node) error {
	if err := checkKey(category, id); err != nil {
		return err
	}

	data, err := encode(tree)
	if err != nil {
		return err
	}

	key := s.dir(category) + fileName(category, id)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}
	return nil
}

func (s *S3Store) List(ctx context.Context, category Category) ([]Entry, error) {
	if !category.valid() {
		return nil, fmt.Errorf("unknown category %q", category)
	}

	keys, err := s.keys(ctx, s.dir(category))
	if err != nil {
		return nil, err
	}

	var entries []Entry
	seen := make(map[string]bool)
	for _, key := range keys {
		id, ok := idFromFileName(category, path.Base(key))
		if !ok || seen[id] {
			continue
		}
		tree, err := s.get(ctx, key)
		if err != nil {
			return nil, err
		}
		seen[id] = true
		entries = append(entries, Entry{ID: id, Tree: tree})
	}
	return entries, nil
}

// keys lists every object key under prefix in lexical order.
func (s *S3Store) keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list objects %s: %w", prefix, err)
		}
		for _, obj := range page.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *S3Store) Close() error { return nil }
