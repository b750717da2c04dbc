package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spigell/skillmatch/internal/skilltree"
)

const defaultRedisPrefix = "skillmatch"

type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	SAdd(ctx context.Context, key string, members ...any) *redis.IntCmd
	SMembers(ctx context.Context, key string) *redis.StringSliceCmd
}

// RedisConfig selects the server and key prefix of a RedisStore.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// RedisStore keeps each tree under "<prefix>:<category>:<id>" and tracks the
// identifiers of a category in the set "<prefix>:<category>:index".
type RedisStore struct {
	client redisClient
	closer func() error
	prefix string
}

// NewRedisStore connects and pings the server.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
	}

	store := newRedisStore(client, cfg.Prefix)
	store.closer = client.Close
	return store, nil
}

func newRedisStore(client redisClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(category Category, id string) string {
	return fmt.Sprintf("%s:%s:%s", s.prefix, category, id)
}

func (s *RedisStore) indexKey(category Category) string {
	return fmt.Sprintf("%s:%s:index", s.prefix, category)
}

func (s *RedisStore) Read(ctx context.Context, category Category, id string) (*skilltree.Node, error) {
	if err := checkKey(category, id); err != nil {
		return nil, err
	}
	return s.read(ctx, category, id)
}

func (s *RedisStore) read(ctx context.Context, category Category, id string) (*skilltree.Node, error) {
	data, err := s.client.Get(ctx, s.key(category, id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get skill tree: %w", err)
	}
	return skilltree.Parse(data)
}

func (s *RedisStore) Write(ctx context.Context, category Category, id string, tree *skilltree.Node) error {
	if err := checkKey(category, id); err != nil {
		return err
	}

	data, err := encode(tree)
	if err != nil {
		return err
	}

	if err := s.client.Set(ctx, s.key(category, id), data, 0).Err(); err != nil {
		return fmt.Errorf("set skill tree: %w", err)
	}
	if err := s.client.SAdd(ctx, s.indexKey(category), id).Err(); err != nil {
		return fmt.Errorf("index skill tree: %w", err)
	}
	return nil
}

// List reads every indexed tree. Identifiers whose value has gone are skipped.
func (s *RedisStore) List(ctx context.Context, category Category) ([]Entry, error) {
	if !category.valid() {
		return nil, fmt.Errorf("unknown category %q", category)
	}

	ids, err := s.client.SMembers(ctx, s.indexKey(category)).Result()
	if err != nil {
		return nil, fmt.Errorf("list skill trees: %w", err)
	}
	sort.Strings(ids)

	entries := make([]Entry, 0, len(ids))
	for _, id := range ids {
		tree, err := s.read(ctx, category, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{ID: id, Tree: tree})
	}
	return entries, nil
}

func (s *RedisStore) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}
