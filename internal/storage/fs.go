package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"

	"github.com/spigell/skillmatch/internal/skilltree"
)

// FileStore keeps every tree in its own JSON file:
// <root>/candidate_skill_trees/candidate_<id>_skill_tree.json and
// <root>/job_skill_trees/job_<id>_*.json.
type FileStore struct {
	root   string
	logger *zap.Logger
}

// NewFileStore creates the category directories under root.
func NewFileStore(root string, logger *zap.Logger) (*FileStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	for _, category := range []Category{Job, Candidate} {
		if err := os.MkdirAll(filepath.Join(root, dirName(category)), 0o755); err != nil {
			return nil, fmt.Errorf("create %s directory: %w", category, err)
		}
	}
	return &FileStore{root: root, logger: logger}, nil
}

func (s *FileStore) Read(_ context.Context, category Category, id string) (*skilltree.Node, error) {
	if err := checkKey(category, id); err != nil {
		return nil, err
	}

	path, err := s.find(category, id)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	tree, err := skilltree.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tree, nil
}

// find resolves the file of a tree. Job files may carry any suffix after the
// identifier; the lexically first one wins.
func (s *FileStore) find(category Category, id string) (string, error) {
	dir := filepath.Join(s.root, dirName(category))
	if category == Candidate {
		return filepath.Join(dir, fileName(category, id)), nil
	}

	matches, err := filepath.Glob(filepath.Join(dir, fmt.Sprintf("job_%s_*.json", id)))
	if err != nil {
		return "", fmt.Errorf("glob job trees: %w", err)
	}
	if len(matches) == 0 {
		return "", ErrNotFound
	}
	sort.Strings(matches)
	return matches[0], nil
}

// Write stores the tree through a temporary file and a rename so readers
// never see a partial document.
func (s *FileStore) Write(_ context.Context, category Category, id string, tree *skilltree.Node) error {
	if err := checkKey(category, id); err != nil {
		return err
	}

	data, err := encode(tree)
	if err != nil {
		return err
	}

	dir := filepath.Join(s.root, dirName(category))
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temporary file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temporary file: %w", err)
	}

	target := filepath.Join(dir, fileName(category, id))
	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("store %s: %w", target, err)
	}

	s.logger.Debug("skill tree stored", zap.String("category", string(category)), zap.String("path", target))
	return nil
}

// List returns every readable tree of the category. Files that fail to parse
// are skipped with a warning.
func (s *FileStore) List(_ context.Context, category Category) ([]Entry, error) {
	if !category.valid() {
		return nil, fmt.Errorf("unknown category %q", category)
	}

	dir := filepath.Join(s.root, dirName(category))
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	var entries []Entry
	seen := make(map[string]bool)
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		id, ok := idFromFileName(category, file.Name())
		if !ok || seen[id] {
			continue
		}

		path := filepath.Join(dir, file.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			s.logger.Warn("skip unreadable skill tree", zap.String("path", path), zap.Error(err))
			continue
		}
		tree, err := skilltree.Parse(data)
		if err != nil {
			s.logger.Warn("skip invalid skill tree", zap.String("path", path), zap.Error(err))
			continue
		}

		seen[id] = true
		entries = append(entries, Entry{ID: id, Tree: tree})
	}

	return entries, nil
}

func (s *FileStore) Close() error { return nil }
