// Package storage persists skill trees keyed by category and identifier.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spigell/skillmatch/internal/skilltree"
)

// Category separates job trees from candidate trees.
type Category string

const (
	Job       Category = "job"
	Candidate Category = "candidate"
)

// ErrNotFound is returned when no tree is stored under the requested key.
var ErrNotFound = errors.New("skill tree not found")

// Entry is a stored tree with its identifier.
type Entry struct {
	ID   string
	Tree *skilltree.Node
}

// Store reads and writes skill trees. Writing an existing key overwrites it.
type Store interface {
	Read(ctx context.Context, category Category, id string) (*skilltree.Node, error)
	Write(ctx context.Context, category Category, id string, tree *skilltree.Node) error
	List(ctx context.Context, category Category) ([]Entry, error)
	Close() error
}

func (c Category) valid() bool {
	return c == Job || c == Candidate
}

func checkKey(category Category, id string) error {
	if !category.valid() {
		return fmt.Errorf("unknown category %q", category)
	}
	if strings.TrimSpace(id) == "" {
		return errors.New("identifier must not be empty")
	}
	if strings.ContainsAny(id, `/\`) {
		return fmt.Errorf("identifier %q must not contain path separators", id)
	}
	return nil
}

func encode(tree *skilltree.Node) ([]byte, error) {
	if tree == nil {
		return nil, errors.New("skill tree must not be nil")
	}
	data, err := json.MarshalIndent(tree, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode skill tree: %w", err)
	}
	return data, nil
}

// dirName is the directory, or object prefix, holding trees of a category.
func dirName(category Category) string {
	return string(category) + "_skill_trees"
}

// fileName is the base name used for a tree written by this package.
func fileName(category Category, id string) string {
	return fmt.Sprintf("%s_%s_skill_tree.json", category, id)
}

// idFromFileName recovers the identifier from names like "job_<id>_anything.json".
func idFromFileName(category Category, name string) (string, bool) {
	rest, ok := strings.CutPrefix(name, string(category)+"_")
	if !ok || !strings.HasSuffix(rest, ".json") {
		return "", false
	}
	rest = strings.TrimSuffix(rest, ".json")
	id, _, _ := strings.Cut(rest, "_")
	if id == "" {
		return "", false
	}
	return id, true
}
