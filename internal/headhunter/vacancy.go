package headhunter

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/spigell/skillmatch/internal/extract"
)

const (
	VacancyIDField         = "ID"
	VacancyEmployerIDField = "EmployerID"
)

type Vacancies struct {
	Items []*Vacancy
}

type Vacancy struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
	Area struct {
		ID   string `json:"id,omitempty"`
		Name string `json:"name,omitempty"`
	} `json:"area,omitempty"`
	Employer struct {
		ID   string `json:"id,omitempty"`
		Name string `json:"name,omitempty"`
	} `json:"employer,omitempty"`
	AlternateURL string `json:"alternate_url,omitempty"`
	Description  string `json:"description,omitempty"`
	KeySkills    []struct {
		Name string `json:"name,omitempty"`
	} `json:"key_skills,omitempty"`
	Archived bool `json:"archived,omitempty"`
	HasTest  bool `json:"has_test,omitempty"`
	Snipet   struct {
		Requirement    string `json:"requirement,omitempty"`
		Responsibility string `json:"responsibility,omitempty"`
	} `json:"snippet,omitempty"`
}

// JobID is the numeric vacancy id.
func (va *Vacancy) JobID() (int64, error) {
	id, err := strconv.ParseInt(va.ID, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("vacancy id %q is not a positive number", va.ID)
	}
	return id, nil
}

// PostingText renders the description and the key skills as plain text. Search
// results have no description, the snippet is used instead.
func (va *Vacancy) PostingText() (string, error) {
	var parts []string

	description := va.Description
	if description == "" {
		description = strings.Join([]string{va.Snipet.Requirement, va.Snipet.Responsibility}, "\n")
	}
	if strings.TrimSpace(description) != "" {
		text, err := extract.HTMLText("<html><body>"+description+"</body></html>", nil)
		if err != nil {
			return "", fmt.Errorf("vacancy %s description: %w", va.ID, err)
		}
		parts = append(parts, text)
	}

	if len(va.KeySkills) > 0 {
		names := make([]string, 0, len(va.KeySkills))
		for _, skill := range va.KeySkills {
			names = append(names, skill.Name)
		}
		parts = append(parts, "Key skills: "+strings.Join(names, ", "))
	}

	return strings.TrimSpace(strings.Join(parts, "\n")), nil
}

func (va *Vacancy) GetStringField(name string) string {
	switch name {
	case VacancyIDField:
		return va.ID
	case VacancyEmployerIDField:
		return va.Employer.ID

	default:
		return ""
	}
}

func (v *Vacancies) Len() int {
	return len(v.Items)
}

func (v *Vacancies) FindByID(id string) *Vacancy {
	for _, vacancy := range v.Items {
		if vacancy.ID == id {
			return vacancy
		}
	}
	return nil
}

// Exclude removes vacancies whose field name equals one of targets and
// returns the removed ids. Order is preserved.
func (v *Vacancies) Exclude(name string, targets []string) []string {
	return v.ExcludeFunc(func(vacancy *Vacancy) bool {
		return slices.Contains(targets, vacancy.GetStringField(name))
	})
}

// ExcludeFunc removes vacancies for which drop returns true and returns the
// removed ids. Order is preserved.
func (v *Vacancies) ExcludeFunc(drop func(*Vacancy) bool) []string {
	var excluded []string
	v.Items = slices.DeleteFunc(v.Items, func(vacancy *Vacancy) bool {
		if drop(vacancy) {
			excluded = append(excluded, vacancy.ID)
			return true
		}
		return false
	})
	return excluded
}
