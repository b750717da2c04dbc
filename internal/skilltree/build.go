package skilltree

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Keys of the technical subcategories that get a fixed position in the tree.
const (
	KeyProgrammingLanguages = "programming_languages"
	KeyFrameworks           = "frameworks"
	KeyTools                = "tools"
	KeyDatabases            = "databases"
	KeyCloudPlatforms       = "cloud_platforms"
)

// Category names produced by Build and BuildJob.
const (
	TechnicalSkills = "Technical Skills"
	SoftSkills      = "Soft Skills"
	DomainExpertise = "Domain Expertise"
	Certifications  = "Certifications"
	Methodologies   = "Methodologies & Techniques"
	KeyRequirements = "Key Requirements"
)

var technicalOrder = []struct {
	key  string
	name string
}{
	{KeyProgrammingLanguages, "Programming Languages"},
	{KeyFrameworks, "Frameworks"},
	{KeyTools, "Tools"},
	{KeyDatabases, "Databases"},
	{KeyCloudPlatforms, "Cloud Platforms"},
}

// Category is a named technical subcategory as produced by skill extraction.
type Category struct {
	Key    string
	Skills []string
}

// Data is the categorized skill data extracted from a document before it becomes a tree.
type Data struct {
	// Technical keeps subcategories in the order they were extracted.
	Technical      []Category
	SoftSkills     []string
	Domains        []string
	Certifications []string
	Methodologies  []string
}

// TechnicalSkills returns the skills stored under key, or nil.
func (d Data) TechnicalSkills(key string) []string {
	for _, c := range d.Technical {
		if c.Key == key {
			return c.Skills
		}
	}
	return nil
}

// Validate reports every empty entry found in the data.
func (d Data) Validate() error {
	var errs []error
	check := func(where string, skills []string) {
		for i, s := range skills {
			if strings.TrimSpace(s) == "" {
				errs = append(errs, fmt.Errorf("%s[%d] is empty", where, i))
			}
		}
	}

	for _, c := range d.Technical {
		if strings.TrimSpace(c.Key) == "" {
			errs = append(errs, errors.New("technical category with empty key"))
		}
		check("technical."+c.Key, c.Skills)
	}
	check("soft_skills", d.SoftSkills)
	check("domains", d.Domains)
	check("certifications", d.Certifications)
	check("methodologies", d.Methodologies)

	return errors.Join(errs...)
}

// Build assembles the skill tree for data. Empty categories are left out and
// every produced leaf is a skill.
func Build(data Data) *Node {
	var children []*Node

	if tech := technicalNodes(data); len(tech) > 0 {
		children = append(children, NewCategory(TechnicalSkills, tech...))
	}

	for _, section := range []struct {
		name   string
		skills []string
	}{
		{SoftSkills, data.SoftSkills},
		{DomainExpertise, data.Domains},
		{Certifications, data.Certifications},
		{Methodologies, data.Methodologies},
	} {
		if len(section.skills) == 0 {
			continue
		}
		children = append(children, skillCategory(section.name, section.skills))
	}

	return NewRoot(nil, children...)
}

// BuildJob builds the tree for a job posting: the skills of data followed by a
// category of requirement leaves, with info recorded on the root.
func BuildJob(data Data, requirements []string, info JobInfo) *Node {
	children := Build(data).children

	if len(requirements) > 0 {
		leaves := make([]*Node, 0, len(requirements))
		for _, r := range requirements {
			leaves = append(leaves, NewRequirement(r))
		}
		children = append(children, NewCategory(KeyRequirements, leaves...))
	}

	return NewRoot(&info, children...)
}

func technicalNodes(data Data) []*Node {
	var nodes []*Node
	known := make(map[string]bool, len(technicalOrder))

	for _, entry := range technicalOrder {
		known[entry.key] = true
		if skills := data.TechnicalSkills(entry.key); len(skills) > 0 {
			nodes = append(nodes, skillCategory(entry.name, skills))
		}
	}

	seen := make(map[string]bool)
	for _, c := range data.Technical {
		if known[c.Key] || seen[c.Key] || len(c.Skills) == 0 {
			continue
		}
		seen[c.Key] = true
		nodes = append(nodes, skillCategory(CategoryTitle(c.Key), c.Skills))
	}

	return nodes
}

func skillCategory(name string, skills []string) *Node {
	leaves := make([]*Node, 0, len(skills))
	for _, s := range skills {
		leaves = append(leaves, NewSkill(s))
	}
	return NewCategory(name, leaves...)
}

// CategoryTitle turns an extraction key such as "machine_learning" into "Machine Learning".
func CategoryTitle(key string) string {
	return cases.Title(language.Und).String(strings.ReplaceAll(key, "_", " "))
}
