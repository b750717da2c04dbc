// Package cache maps resume bytes to the candidate skill tree built from them.
package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/spigell/skillmatch/internal/skilltree"
	"github.com/spigell/skillmatch/internal/storage"
)

// DefaultIDLength is the number of hex characters kept from the digest.
const DefaultIDLength = 16

// ContentID returns the first width hex characters of the MD5 digest of data.
// Widths outside 1..32 are clamped, zero selects DefaultIDLength.
func ContentID(data []byte, width int) string {
	sum := md5.Sum(data)
	digest := hex.EncodeToString(sum[:])

	switch {
	case width == 0:
		width = DefaultIDLength
	case width < 1:
		width = 1
	case width > len(digest):
		width = len(digest)
	}
	return digest[:width]
}

// Entry is the outcome of Do.
type Entry struct {
	ID   string
	Tree *skilltree.Node
	// Cached is true when the tree came from storage instead of compute.
	Cached bool
}

// Cache stores candidate trees under the content identifier of the source document.
type Cache struct {
	store  storage.Store
	width  int
	group  singleflight.Group
	logger *zap.Logger
}

// New creates a Cache on top of store.
func New(store storage.Store, width int, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{store: store, width: width, logger: logger}
}

// ID returns the identifier of data.
func (c *Cache) ID(data []byte) string {
	return ContentID(data, c.width)
}

// Resolve computes the identifier of data and looks up its tree. The tree is
// nil on a miss.
func (c *Cache) Resolve(ctx context.Context, data []byte) (string, *skilltree.Node, error) {
	id := c.ID(data)

	tree, err := c.store.Read(ctx, storage.Candidate, id)
	if errors.Is(err, storage.ErrNotFound) {
		return id, nil, nil
	}
	if err != nil {
		return id, nil, fmt.Errorf("resolve %s: %w", id, err)
	}

	return id, tree, nil
}

// Store persists tree under id. Storing the same id again overwrites it.
func (c *Cache) Store(ctx context.Context, id string, tree *skilltree.Node) error {
	if err := c.store.Write(ctx, storage.Candidate, id, tree); err != nil {
		return fmt.Errorf("store %s: %w", id, err)
	}
	return nil
}

// Do returns the cached tree of data, or runs compute, stores its result and
// returns it. Concurrent calls for the same content share a single compute.
func (c *Cache) Do(ctx context.Context, data []byte, compute func(context.Context) (*skilltree.Node, error)) (Entry, error) {
	id, tree, err := c.Resolve(ctx, data)
	if err != nil {
		return Entry{}, err
	}
	if tree != nil {
		c.logger.Debug("skill tree cache hit", zap.String("file_id", id))
		return Entry{ID: id, Tree: tree, Cached: true}, nil
	}

	c.logger.Debug("skill tree cache miss", zap.String("file_id", id))

	v, err, shared := c.group.Do(id, func() (any, error) {
		tree, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		if err := c.Store(ctx, id, tree); err != nil {
			return nil, err
		}
		return tree, nil
	})
	if err != nil {
		return Entry{}, err
	}

	if shared {
		c.logger.Debug("skill tree computation shared", zap.String("file_id", id))
	}

	return Entry{ID: id, Tree: v.(*skilltree.Node)}, nil
}
