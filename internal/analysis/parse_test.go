package analysis

import (
	"errors"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/spigell/skillmatch/internal/ai"
	"github.com/spigell/skillmatch/internal/skilltree"
)

func TestParseKeepsTechnicalOrder(t *testing.T) {
	raw := "```json\n" + `{
		"skills": {
			"technical": {
				"machine_learning": ["PyTorch"],
				"programming_languages": ["Python", "Go"],
				"tools": [],
				"machine_learning": ["JAX", "PyTorch"]
			},
			"soft_skills": ["Mentoring"],
			"domains": null,
			"methodologies": ["Agile"]
		}
	}` + "\n```"

	doc, err := Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	want := skilltree.Data{
		Technical: []skilltree.Category{
			{Key: "machine_learning", Skills: []string{"JAX", "PyTorch"}},
			{Key: skilltree.KeyProgrammingLanguages, Skills: []string{"Python", "Go"}},
			{Key: skilltree.KeyTools},
		},
		SoftSkills:    []string{"Mentoring"},
		Methodologies: []string{"Agile"},
	}
	if diff := cmp.Diff(want, doc.Data); diff != "" {
		t.Fatalf("unexpected data (-want +got):\n%s", diff)
	}
	if doc.Requirements != nil {
		t.Fatalf("expected no requirements, got %v", doc.Requirements)
	}
}

func TestParseRequirements(t *testing.T) {
	doc, err := Parse(`{"skills": {"soft_skills": ["Ownership"]}, "requirements": ["5+ years of Go", "BSc in CS"]}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !slices.Equal(doc.Requirements, []string{"5+ years of Go", "BSc in CS"}) {
		t.Fatalf("unexpected requirements: %v", doc.Requirements)
	}
	if doc.Data.Technical != nil {
		t.Fatalf("expected no technical categories, got %v", doc.Data.Technical)
	}
}

func TestParseRejectsMalformedAnswers(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"not json":              "I could not find any skills.",
		"missing skills":        `{"technical": {}}`,
		"technical not object":  `{"skills": {"technical": ["Go"]}}`,
		"number in list":        `{"skills": {"soft_skills": [1]}}`,
		"empty skill":           `{"skills": {"technical": {"tools": ["Docker", "  "]}}}`,
		"empty requirement":     `{"skills": {}, "requirements": [""]}`,
		"non string technical":  `{"skills": {"technical": {"tools": [true]}}}`,
		"requirements not list": `{"skills": {}, "requirements": "many"}`,
	}

	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := Parse(raw)
			var malformed *ai.MalformedResponseError
			if !errors.As(err, &malformed) {
				t.Fatalf("expected malformed response error, got %v", err)
			}
		})
	}
}
