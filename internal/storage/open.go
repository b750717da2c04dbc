package storage

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"
)

// Backend names accepted by Open.
const (
	BackendFS       = "fs"
	BackendSQLite   = "sqlite"
	BackendRedis    = "redis"
	BackendS3       = "s3"
	BackendPostgres = "postgres"
)

// Config selects and configures the storage backend.
type Config struct {
	Backend     string      `mapstructure:"backend" validate:"omitempty,oneof=fs sqlite redis s3 postgres"`
	Dir         string      `mapstructure:"dir"`
	SQLitePath  string      `mapstructure:"sqlite-path"`
	PostgresDSN string      `mapstructure:"postgres-dsn" validate:"required_if=Backend postgres"`
	Redis       RedisConfig `mapstructure:"redis"`
	S3          S3Config    `mapstructure:"s3"`
}

// Open creates the configured Store. An empty backend means the file store.
func Open(ctx context.Context, cfg Config, logger *zap.Logger) (Store, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = "data"
	}

	var (
		store Store
		err   error
	)

	switch cfg.Backend {
	case "", BackendFS:
		store, err = NewFileStore(dir, logger)
	case BackendSQLite:
		path := cfg.SQLitePath
		if path == "" {
			path = filepath.Join(dir, "skill_trees.db")
		}
		store, err = NewSQLiteStore(ctx, path)
	case BackendRedis:
		store, err = NewRedisStore(ctx, cfg.Redis)
	case BackendS3:
		store, err = NewS3Store(ctx, cfg.S3)
	case BackendPostgres:
		store, err = NewPostgresStore(ctx, cfg.PostgresDSN)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", cfg.Backend, err)
	}
	return store, nil
}
