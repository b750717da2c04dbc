package analysis

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/spigell/skillmatch/internal/skilltree"
)

const maxRequirements = 20

var keywords = []skilltree.Category{
	{
		Key:    skilltree.KeyProgrammingLanguages,
		Skills: []string{"Python", "JavaScript", "Java", "C++", "C#", "Go", "Rust", "TypeScript", "SQL", "R", "Swift", "Kotlin"},
	},
	{
		Key:    skilltree.KeyFrameworks,
		Skills: []string{"React", "Vue", "Angular", "Django", "Flask", "FastAPI", "Spring", "Node.js", "Express", "TensorFlow", "PyTorch"},
	},
	{
		Key:    skilltree.KeyTools,
		Skills: []string{"Git", "Docker", "Kubernetes", "AWS", "Azure", "GCP", "Jenkins", "CI/CD", "Linux", "MongoDB", "PostgreSQL", "Redis"},
	},
}

var bulletPattern = regexp.MustCompile(`^\s*(?:[-*•▪◦‣]|\d{1,2}[.)])\s+(.+)$`)

// KeywordExtract finds well known technical skills in text. A keyword counts
// only when it is not surrounded by letters or digits, so "Go" does not match
// "Google".
func KeywordExtract(text string) skilltree.Data {
	lower := strings.ToLower(text)

	var data skilltree.Data
	for _, category := range keywords {
		var found []string
		for _, keyword := range category.Skills {
			if containsWord(lower, strings.ToLower(keyword)) {
				found = append(found, keyword)
			}
		}
		if len(found) > 0 {
			data.Technical = append(data.Technical, skilltree.Category{Key: category.Key, Skills: found})
		}
	}
	return data
}

func containsWord(text, word string) bool {
	for start := 0; start < len(text); {
		idx := strings.Index(text[start:], word)
		if idx < 0 {
			return false
		}
		begin := start + idx
		end := begin + len(word)

		before, _ := utf8.DecodeLastRuneInString(text[:begin])
		after, _ := utf8.DecodeRuneInString(text[end:])
		if !isWordRune(before) && !isWordRune(after) {
			return true
		}
		start = begin + 1
	}
	return false
}

func isWordRune(r rune) bool {
	return r != utf8.RuneError && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '+' || r == '#')
}

// ExtractRequirements returns the bullet point lines of a job posting, in
// order and without duplicates.
func ExtractRequirements(text string) []string {
	var requirements []string
	seen := make(map[string]bool)

	for _, line := range strings.Split(text, "\n") {
		match := bulletPattern.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		requirement := strings.TrimSpace(match[1])
		key := strings.ToLower(requirement)
		if requirement == "" || seen[key] {
			continue
		}
		seen[key] = true
		requirements = append(requirements, requirement)
		if len(requirements) == maxRequirements {
			break
		}
	}
	return requirements
}
