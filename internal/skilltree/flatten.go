package skilltree

import "strings"

// Flatten lists the lower-cased names of every skill and requirement in tree,
// depth first. Category nodes contribute nothing.
func Flatten(tree *Node) []string {
	skills := make([]string, 0)
	if tree == nil {
		return skills
	}
	for leaf := range tree.Leaves() {
		skills = append(skills, strings.ToLower(leaf.Name()))
	}
	return skills
}

// Requirements lists the requirement leaves of tree in tree order.
func Requirements(tree *Node) []string {
	var requirements []string
	if tree == nil {
		return requirements
	}
	for leaf := range tree.Leaves() {
		if leaf.Kind() == KindRequirement {
			requirements = append(requirements, leaf.Name())
		}
	}
	return requirements
}
