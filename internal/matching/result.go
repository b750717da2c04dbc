// Package matching compares the flattened skills of a job with those of a
// candidate and sorts them into matches and gaps.
package matching

import "strings"

// Similarity classifies how a candidate skill relates to the job skill it matched.
type Similarity string

const (
	Exact   Similarity = "exact"
	Synonym Similarity = "synonym"
	Related Similarity = "related"
)

// Valid reports whether s is one of the known similarity classes.
func (s Similarity) Valid() bool {
	switch s {
	case Exact, Synonym, Related:
		return true
	default:
		return false
	}
}

// Match pairs a candidate skill with the job skill it covers.
type Match struct {
	CandidateSkill string     `json:"candidate_skill" mapstructure:"candidate_skill"`
	JobSkill       string     `json:"job_skill" mapstructure:"job_skill"`
	Similarity     Similarity `json:"similarity" mapstructure:"similarity"`
}

// Result is the outcome of matching job skills against candidate skills.
type Result struct {
	Matches       []Match  `json:"matches" mapstructure:"matches"`
	CandidateOnly []string `json:"candidate_only" mapstructure:"candidate_only"`
	JobOnly       []string `json:"job_only" mapstructure:"job_only"`
}

func newResult() *Result {
	return &Result{
		Matches:       []Match{},
		CandidateOnly: []string{},
		JobOnly:       []string{},
	}
}

// normalize replaces nil buckets with empty ones so they encode as [].
func (r *Result) normalize() *Result {
	if r.Matches == nil {
		r.Matches = []Match{}
	}
	if r.CandidateOnly == nil {
		r.CandidateOnly = []string{}
	}
	if r.JobOnly == nil {
		r.JobOnly = []string{}
	}
	return r
}

// Complete reports whether every job and candidate skill lands in exactly one
// bucket of r: the matches or its own *_only list. Comparison ignores case and
// entries that do not come from the inputs make the result incomplete.
func (r *Result) Complete(jobSkills, candidateSkills []string) bool {
	if r == nil {
		return false
	}

	matchedJob := make(map[string]bool, len(r.Matches))
	matchedCandidate := make(map[string]bool, len(r.Matches))
	for _, m := range r.Matches {
		if !m.Similarity.Valid() {
			return false
		}
		matchedJob[strings.ToLower(m.JobSkill)] = true
		matchedCandidate[strings.ToLower(m.CandidateSkill)] = true
	}

	return covers(jobSkills, matchedJob, r.JobOnly) &&
		covers(candidateSkills, matchedCandidate, r.CandidateOnly)
}

func covers(input []string, matched map[string]bool, only []string) bool {
	known := lowerSet(input)
	unmatched := lowerSet(only)

	for skill := range matched {
		if !known[skill] {
			return false
		}
	}
	for skill := range unmatched {
		if !known[skill] {
			return false
		}
	}

	for skill := range known {
		if matched[skill] == unmatched[skill] {
			return false
		}
	}
	return true
}

func lowerSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[strings.ToLower(v)] = true
	}
	return set
}
