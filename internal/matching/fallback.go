package matching

import "strings"

// Fallback matches skills without the oracle. For each candidate skill the
// first job skill that is equal to it, or contains it, or is contained in it
// (ignoring case) wins. Identical strings are exact matches, the rest related.
// Job skills that no match refers to end up in JobOnly.
func Fallback(jobSkills, candidateSkills []string) *Result {
	result := newResult()
	matchedJob := make(map[string]bool)

	for _, candidate := range candidateSkills {
		candidateLower := strings.ToLower(candidate)
		matched := false

		for _, job := range jobSkills {
			jobLower := strings.ToLower(job)
			if candidateLower != jobLower &&
				!strings.Contains(jobLower, candidateLower) &&
				!strings.Contains(candidateLower, jobLower) {
				continue
			}

			similarity := Related
			if candidateLower == jobLower {
				similarity = Exact
			}
			result.Matches = append(result.Matches, Match{
				CandidateSkill: candidate,
				JobSkill:       job,
				Similarity:     similarity,
			})
			matchedJob[jobLower] = true
			matched = true
			break
		}

		if !matched {
			result.CandidateOnly = append(result.CandidateOnly, candidate)
		}
	}

	for _, job := range jobSkills {
		if !matchedJob[strings.ToLower(job)] {
			result.JobOnly = append(result.JobOnly, job)
		}
	}

	return result
}
