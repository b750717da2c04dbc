// Package fixtures holds named skill trees shipped with the binary.
package fixtures

import (
	_ "embed"

	"github.com/spigell/skillmatch/internal/skilltree"
)

//go:embed default_job.json
var defaultJob []byte

var defaultJobTree = mustParse(defaultJob)

// DefaultJobTree is served when a requested job tree does not exist.
func DefaultJobTree() *skilltree.Node {
	return defaultJobTree
}

func mustParse(data []byte) *skilltree.Node {
	tree, err := skilltree.Parse(data)
	if err != nil {
		panic(err)
	}
	return tree
}
