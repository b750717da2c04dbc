package questions

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"

	"github.com/spigell/skillmatch/internal/ai"
	"github.com/spigell/skillmatch/internal/skilltree"
)

type stubOracle struct {
	answer string
	err    error
	delay  time.Duration

	calls  int
	system string
	prompt string
}

func (s *stubOracle) Classify(_ context.Context, system, prompt string) (string, error) {
	s.calls++
	s.system = system
	s.prompt = prompt
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	return s.answer, s.err
}

func jobTree() *skilltree.Node {
	return skilltree.BuildJob(
		skilltree.Data{
			Technical: []skilltree.Category{
				{Key: skilltree.KeyProgrammingLanguages, Skills: []string{"Go", "Python"}},
				{Key: skilltree.KeyTools, Skills: []string{"Kubernetes"}},
			},
		},
		[]string{"5+ years building distributed systems", "On-call experience"},
		skilltree.JobInfo{ID: 1, Title: "Backend Engineer", Location: "Berlin"},
	)
}

func TestFallbackWithSkills(t *testing.T) {
	got := Fallback("Backend Engineer", "Go, Docker, SQL")

	want := []string{
		"Can you explain why you are a good fit for our Backend Engineer position?",
		"What technical challenges have you faced in your previous projects?",
		"How do you approach problem-solving in a technical context?",
		"Can you describe a complex project you've worked on?",
		"What methodologies do you use for software development?",
		"Can you tell me about your experience with Go?",
		"Can you tell me about your experience with Docker?",
		"Can you tell me about your experience with SQL?",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected questions (-want +got):\n%s", diff)
	}
}

func TestFallbackBounds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		title      string
		hint       string
		wantLen    int
		lastSuffix string
	}{
		{name: "no hint", title: "SRE", hint: "", wantLen: 5, lastSuffix: "software development?"},
		{name: "more than three skills", title: "SRE", hint: "Go,Rust,C,Zig,Odin", wantLen: 8, lastSuffix: "with C?"},
		{name: "empty tokens skipped", title: "SRE", hint: " , Go,, ", wantLen: 6, lastSuffix: "with Go?"},
		{name: "single skill", title: "SRE", hint: "Terraform", wantLen: 6, lastSuffix: "with Terraform?"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Fallback(tt.title, tt.hint)
			if len(got) != tt.wantLen {
				t.Fatalf("expected %d questions, got %d: %v", tt.wantLen, len(got), got)
			}
			if last := got[len(got)-1]; !strings.HasSuffix(last, tt.lastSuffix) {
				t.Fatalf("unexpected last question %q", last)
			}
		})
	}
}

func TestGenerateWithoutJobTreeUsesFallback(t *testing.T) {
	oracle := &stubOracle{answer: `["q1","q2","q3","q4","q5"]`}
	g := NewGenerator(oracle, zap.NewNop(), 0)

	got := g.Generate(context.Background(), Request{JobTitle: "Backend Engineer", SkillsHint: "Go, Docker, SQL"})
	if diff := cmp.Diff(Fallback("Backend Engineer", "Go, Docker, SQL"), got); diff != "" {
		t.Fatalf("unexpected questions (-want +got):\n%s", diff)
	}
	if oracle.calls != 0 {
		t.Fatalf("oracle must not be called without a job tree")
	}
}

func TestGenerateDefaultsTitle(t *testing.T) {
	got := NewGenerator(nil, nil, 0).Generate(context.Background(), Request{})
	if len(got) != 5 || !strings.Contains(got[0], "our Software Engineer position") {
		t.Fatalf("unexpected questions: %v", got)
	}
}

func TestGenerateUsesOracle(t *testing.T) {
	answer := "```json\n[\"Q1\",\"Q2\",\"Q3\",\"Q4\",\"Q5\",\"Q6\",\"Q7\",\"Q8\",\"Q9\",\"Q10\",\"Q11\"]\n```"
	oracle := &stubOracle{answer: answer}
	g := NewGenerator(oracle, zap.NewNop(), 0)

	candidate := skilltree.Build(skilltree.Data{SoftSkills: []string{"Mentoring"}})
	got := g.Generate(context.Background(), Request{
		JobTree:       jobTree(),
		CandidateTree: candidate,
		JobTitle:      "Backend Engineer",
		Location:      "Berlin",
	})

	want := []string{"Q1", "Q2", "Q3", "Q4", "Q5", "Q6", "Q7", "Q8", "Q9", "Q10"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected questions (-want +got):\n%s", diff)
	}

	if oracle.system != SystemMessage {
		t.Fatalf("unexpected system message %q", oracle.system)
	}
	for _, fragment := range []string{
		"Position: Backend Engineer in Berlin",
		"- 5+ years building distributed systems\n- On-call experience",
		"Required Skills: go, python, kubernetes, 5+ years building distributed systems, on-call experience",
		"Candidate Skills: mentoring",
	} {
		if !strings.Contains(oracle.prompt, fragment) {
			t.Fatalf("prompt is missing %q:\n%s", fragment, oracle.prompt)
		}
	}
}

func TestGenerateWithoutCandidate(t *testing.T) {
	oracle := &stubOracle{answer: `["a","b","c","d","e","f","g","h"]`}
	g := NewGenerator(oracle, zap.NewNop(), 0)

	got := g.Generate(context.Background(), Request{JobTree: jobTree(), JobTitle: "Backend Engineer"})
	if len(got) != 8 {
		t.Fatalf("expected oracle questions, got %v", got)
	}
	if !strings.Contains(oracle.prompt, noCandidateSummary) {
		t.Fatalf("prompt should say no resume was uploaded:\n%s", oracle.prompt)
	}
	if strings.Contains(oracle.prompt, " in \n") || strings.Contains(oracle.prompt, "Backend Engineer in") {
		t.Fatalf("location must be omitted when empty:\n%s", oracle.prompt)
	}
}

func TestGenerateFallsBack(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		oracle ai.Oracle
	}{
		{name: "oracle error", oracle: &stubOracle{err: errors.New("status 500")}},
		{name: "not json", oracle: &stubOracle{answer: "1. Tell me about Go"}},
		{name: "object instead of list", oracle: &stubOracle{answer: `{"questions": ["a","b","c","d","e"]}`}},
		{name: "not strings", oracle: &stubOracle{answer: `[1, 2, 3, 4, 5]`}},
		{name: "too few questions", oracle: &stubOracle{answer: `["only one"]`}},
		{
			name: "timeout",
			oracle: ai.Bounded{
				Oracle:  &stubOracle{answer: `["a","b","c","d","e"]`, delay: 200 * time.Millisecond},
				Timeout: 10 * time.Millisecond,
			},
		},
	}

	want := Fallback("Backend Engineer", "Go")

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := NewGenerator(tt.oracle, zap.NewNop(), 0).Generate(context.Background(), Request{
				JobTree:    jobTree(),
				JobTitle:   "Backend Engineer",
				SkillsHint: "Go",
			})
			if diff := cmp.Diff(want, got); diff != "" {
				t.Fatalf("expected fallback (-want +got):\n%s", diff)
			}
		})
	}
}
