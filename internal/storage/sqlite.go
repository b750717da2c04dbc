package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/spigell/skillmatch/internal/skilltree"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS skill_trees (
	category   TEXT NOT NULL,
	id         TEXT NOT NULL,
	tree       TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (category, id)
)`

// SQLiteStore keeps trees in a single SQLite table.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens, or creates, the database at path.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Read(ctx context.Context, category Category, id string) (*skilltree.Node, error) {
	if err := checkKey(category, id); err != nil {
		return nil, err
	}

	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT tree FROM skill_trees WHERE category = ? AND id = ?`,
		string(category), id,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query skill tree: %w", err)
	}

	return skilltree.Parse([]byte(data))
}

func (s *SQLiteStore) Write(ctx context.Context, category Category, id string, tree *skilltree.Node) error {
	if err := checkKey(category, id); err != nil {
		return err
	}

	data, err := encode(tree)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO skill_trees (category, id, tree) VALUES (?, ?, ?)
		ON CONFLICT (category, id) DO UPDATE SET tree = excluded.tree, updated_at = CURRENT_TIMESTAMP
	`, string(category), id, string(data))
	if err != nil {
		return fmt.Errorf("store skill tree: %w", err)
	}
	return nil
}

func (s *SQLiteStore) List(ctx context.Context, category Category) ([]Entry, error) {
	if !category.valid() {
		return nil, fmt.Errorf("unknown category %q", category)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, tree FROM skill_trees WHERE category = ? ORDER BY id`,
		string(category),
	)
	if err != nil {
		return nil, fmt.Errorf("list skill trees: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, err
		}
		tree, err := skilltree.Parse([]byte(data))
		if err != nil {
			return nil, fmt.Errorf("skill tree %s/%s: %w", category, id, err)
		}
		entries = append(entries, Entry{ID: id, Tree: tree})
	}
	return entries, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
