// Package skilltree models skills as an ordered tree of categories and typed leaves.
package skilltree

import (
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"slices"
	"strings"
)

// RootName is the label carried by the root of every skill tree.
const RootName = "Skills"

// Kind tells category nodes apart from leaves.
type Kind int

const (
	KindCategory Kind = iota
	KindSkill
	KindRequirement
)

const (
	typeCategory    = "category"
	typeSkill       = "skill"
	typeRequirement = "requirement"
)

var (
	// ErrLeafWithChildren is returned when a skill or requirement node carries children.
	ErrLeafWithChildren = errors.New("leaf node must not have children")
	// ErrUnknownType is returned for node types outside of skill, requirement and category.
	ErrUnknownType = errors.New("unknown node type")
)

func (k Kind) String() string {
	switch k {
	case KindSkill:
		return typeSkill
	case KindRequirement:
		return typeRequirement
	default:
		return typeCategory
	}
}

// IsLeaf reports whether the kind denotes a skill or a requirement.
func (k Kind) IsLeaf() bool {
	return k == KindSkill || k == KindRequirement
}

// JobInfo is the provenance attached to the root of a job skill tree.
type JobInfo struct {
	ID       int64
	Title    string
	Location string
}

// Node is an immutable skill tree node. Categories hold ordered children,
// leaves hold a skill or requirement name and nothing else.
type Node struct {
	name     string
	kind     Kind
	children []*Node
	job      *JobInfo
}

// NewCategory creates a category node with the given children.
func NewCategory(name string, children ...*Node) *Node {
	return &Node{name: name, kind: KindCategory, children: slices.Clone(children)}
}

// NewSkill creates a skill leaf.
func NewSkill(name string) *Node {
	return &Node{name: name, kind: KindSkill}
}

// NewRequirement creates a requirement leaf.
func NewRequirement(name string) *Node {
	return &Node{name: name, kind: KindRequirement}
}

// NewRoot creates the "Skills" root. info is optional and only set for job trees.
func NewRoot(info *JobInfo, children ...*Node) *Node {
	root := NewCategory(RootName, children...)
	if info != nil {
		copied := *info
		root.job = &copied
	}
	return root
}

func (n *Node) Name() string { return n.name }

func (n *Node) Kind() Kind { return n.kind }

// Children returns a copy of the ordered children.
func (n *Node) Children() []*Node { return slices.Clone(n.children) }

// Job returns a copy of the job provenance, or nil for non-job trees.
func (n *Node) Job() *JobInfo {
	if n == nil || n.job == nil {
		return nil
	}
	copied := *n.job
	return &copied
}

// Leaves yields skill and requirement nodes in pre-order, children in stored order.
// The sequence can be ranged over any number of times.
func (n *Node) Leaves() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		n.walk(yield)
	}
}

func (n *Node) walk(yield func(*Node) bool) bool {
	if n == nil {
		return true
	}
	if n.kind.IsLeaf() {
		return yield(n)
	}
	for _, child := range n.children {
		if !child.walk(yield) {
			return false
		}
	}
	return true
}

type categoryJSON struct {
	Name     string  `json:"name"`
	Children []*Node `json:"children"`
	JobID    *int64  `json:"job_id,omitempty"`
	JobTitle *string `json:"job_title,omitempty"`
	Location *string `json:"location,omitempty"`
}

type leafJSON struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type nodeJSON struct {
	Name     string  `json:"name"`
	Children []*Node `json:"children"`
	Type     string  `json:"type"`
	JobID    *int64  `json:"job_id"`
	JobTitle string  `json:"job_title"`
	Location string  `json:"location"`
}

// MarshalJSON renders categories as {"name", "children"} and leaves as {"name", "type"}.
func (n *Node) MarshalJSON() ([]byte, error) {
	if n.kind.IsLeaf() {
		return json.Marshal(leafJSON{Name: n.name, Type: n.kind.String()})
	}

	out := categoryJSON{Name: n.name, Children: n.children}
	if out.Children == nil {
		out.Children = []*Node{}
	}
	if n.job != nil {
		out.JobID = &n.job.ID
		out.JobTitle = &n.job.Title
		out.Location = &n.job.Location
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a node and rejects leaves that carry children.
func (n *Node) UnmarshalJSON(data []byte) error {
	var raw nodeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var kind Kind
	switch strings.ToLower(strings.TrimSpace(raw.Type)) {
	case "", typeCategory:
		kind = KindCategory
	case typeSkill:
		kind = KindSkill
	case typeRequirement:
		kind = KindRequirement
	default:
		return fmt.Errorf("%w %q for node %q", ErrUnknownType, raw.Type, raw.Name)
	}

	if kind.IsLeaf() && len(raw.Children) > 0 {
		return fmt.Errorf("%w: %q", ErrLeafWithChildren, raw.Name)
	}

	*n = Node{name: raw.Name, kind: kind}
	if kind == KindCategory {
		n.children = raw.Children
	}
	if raw.JobID != nil {
		n.job = &JobInfo{ID: *raw.JobID, Title: raw.JobTitle, Location: raw.Location}
	}
	return nil
}

// Parse decodes a persisted skill tree.
func Parse(data []byte) (*Node, error) {
	var node Node
	if err := json.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("parse skill tree: %w", err)
	}
	return &node, nil
}
