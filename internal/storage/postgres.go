package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spigell/skillmatch/internal/skilltree"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS skill_trees (
	category   TEXT NOT NULL,
	id         TEXT NOT NULL,
	tree       JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (category, id)
)`

// PostgresStore keeps trees in a JSONB column.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to dsn and creates the table when missing.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	pingCtx := ctx
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
	}
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Read(ctx context.Context, category Category, id string) (*skilltree.Node, error) {
	if err := checkKey(category, id); err != nil {
		return nil, err
	}

	var data []byte
	err := s.pool.QueryRow(ctx,
		`SELECT tree FROM skill_trees WHERE category = $1 AND id = $2`,
		string(category), id,
	).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query skill tree: %w", err)
	}

	return skilltree.Parse(data)
}

func (s *PostgresStore) Write(ctx context.Context, category Category, id string, tree *skilltree.Node) error {
	if err := checkKey(category, id); err != nil {
		return err
	}

	data, err := encode(tree)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO skill_trees (category, id, tree) VALUES ($1, $2, $3)
		ON CONFLICT (category, id) DO UPDATE SET tree = EXCLUDED.tree, updated_at = now()
	`, string(category), id, data)
	if err != nil {
		return fmt.Errorf("store skill tree: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, category Category) ([]Entry, error) {
	if !category.valid() {
		return nil, fmt.Errorf("unknown category %q", category)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, tree FROM skill_trees WHERE category = $1 ORDER BY id`,
		string(category),
	)
	if err != nil {
		return nil, fmt.Errorf("list skill trees: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var id string
		var data []byte
		if err := rows.Scan(&id, &data); err != nil {
			return nil, err
		}
		tree, err := skilltree.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("skill tree %s/%s: %w", category, id, err)
		}
		entries = append(entries, Entry{ID: id, Tree: tree})
	}
	return entries, rows.Err()
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
