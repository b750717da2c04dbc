// Package questions produces interview questions for a job and, optionally,
// a candidate.
package questions

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/spigell/skillmatch/internal/ai"
	"github.com/spigell/skillmatch/internal/logger"
	"github.com/spigell/skillmatch/internal/skilltree"
	"github.com/spigell/skillmatch/internal/utils"
)

const (
	// DefaultJobTitle is used when a request carries no title.
	DefaultJobTitle = "Software Engineer"
	// SystemMessage is sent along with every question prompt.
	SystemMessage = "You are an expert interview question generator. Always return valid JSON arrays only, no markdown or additional text."

	// MaxQuestions caps the oracle answer.
	MaxQuestions = 10

	maxFallbackQuestions = 8
	maxSkillQuestions    = 3
	maxRequirements      = 10
	maxSkills            = 15
	defaultMaxLogLength  = 200
	noCandidateSummary   = "No candidate resume uploaded yet."
)

//go:embed prompt.md
var promptTemplate string

//go:embed schema.json
var questionsSchemaSource string

var questionsSchema = ai.MustSchema("interview questions", questionsSchemaSource)

// Request describes what the questions are about. Both trees are optional.
type Request struct {
	JobTree       *skilltree.Node
	CandidateTree *skilltree.Node
	JobTitle      string
	Location      string
	// SkillsHint is a comma separated list of skills used by the fallback.
	SkillsHint string
}

// Fallback returns five generic questions for jobTitle followed by one
// question for each of the first three non-empty skills in the comma
// separated skillsHint.
func Fallback(jobTitle, skillsHint string) []string {
	if strings.TrimSpace(jobTitle) == "" {
		jobTitle = DefaultJobTitle
	}

	questions := []string{
		fmt.Sprintf("Can you explain why you are a good fit for our %s position?", jobTitle),
		"What technical challenges have you faced in your previous projects?",
		"How do you approach problem-solving in a technical context?",
		"Can you describe a complex project you've worked on?",
		"What methodologies do you use for software development?",
	}

	added := 0
	for _, token := range strings.Split(skillsHint, ",") {
		skill := strings.TrimSpace(token)
		if skill == "" {
			continue
		}
		if added == maxSkillQuestions || len(questions) == maxFallbackQuestions {
			break
		}
		questions = append(questions, fmt.Sprintf("Can you tell me about your experience with %s?", skill))
		added++
	}

	return questions
}

// Generator asks the oracle for tailored questions and falls back to
// Fallback when there is no job tree or no usable answer.
type Generator struct {
	oracle    ai.Oracle
	logger    *zap.Logger
	maxLogLen int
}

// NewGenerator creates a Generator. A nil oracle always selects Fallback.
func NewGenerator(oracle ai.Oracle, log *zap.Logger, maxLogLength int) *Generator {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	provider, model := ai.Describe(oracle)
	return &Generator{
		oracle:    oracle,
		logger:    logger.WithCommonFields(log, provider, model),
		maxLogLen: maxLogLength,
	}
}

// Generate returns between 5 and 10 questions. It never fails.
func (g *Generator) Generate(ctx context.Context, req Request) []string {
	if strings.TrimSpace(req.JobTitle) == "" {
		req.JobTitle = DefaultJobTitle
	}

	if g == nil || g.oracle == nil || req.JobTree == nil {
		return Fallback(req.JobTitle, req.SkillsHint)
	}

	questions, err := g.generateWithOracle(ctx, req)
	if err != nil {
		g.logger.Warn("oracle question generation failed, using fallback",
			zap.String("job_title", req.JobTitle),
			zap.Error(err),
		)
		return Fallback(req.JobTitle, req.SkillsHint)
	}

	return questions
}

func (g *Generator) generateWithOracle(ctx context.Context, req Request) ([]string, error) {
	prompt := buildPrompt(req)

	g.logger.Debug("oracle questions request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, g.maxLogLen)),
	)

	raw, err := g.oracle.Classify(ctx, SystemMessage, prompt)
	if err != nil {
		return nil, err
	}

	g.logger.Debug("oracle questions response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, g.maxLogLen)),
	)

	return parseResponse(raw)
}

func parseResponse(raw string) ([]string, error) {
	cleaned := ai.ExtractJSON(raw)
	if err := questionsSchema.Validate(cleaned); err != nil {
		return nil, err
	}

	var questions []string
	if err := json.Unmarshal([]byte(cleaned), &questions); err != nil {
		return nil, &ai.MalformedResponseError{Reason: err.Error(), Raw: raw}
	}

	if len(questions) > MaxQuestions {
		questions = questions[:MaxQuestions]
	}
	return questions, nil
}

func buildPrompt(req Request) string {
	prompt := strings.ReplaceAll(promptTemplate, "{{JOB_DESCRIPTION}}", jobDescription(req))
	return strings.ReplaceAll(prompt, "{{CANDIDATE_SUMMARY}}", candidateSummary(req.CandidateTree))
}

func jobDescription(req Request) string {
	var b strings.Builder
	b.WriteString("Position: ")
	b.WriteString(req.JobTitle)
	if req.Location != "" {
		b.WriteString(" in ")
		b.WriteString(req.Location)
	}

	b.WriteString("\n\nKey Requirements:")
	for _, r := range head(skilltree.Requirements(req.JobTree), maxRequirements) {
		b.WriteString("\n- ")
		b.WriteString(r)
	}

	b.WriteString("\n\nRequired Skills: ")
	b.WriteString(strings.Join(head(skilltree.Flatten(req.JobTree), maxSkills), ", "))

	return b.String()
}

func candidateSummary(tree *skilltree.Node) string {
	skills := skilltree.Flatten(tree)
	if len(skills) == 0 {
		return noCandidateSummary
	}
	return "Candidate Skills: " + strings.Join(head(skills, maxSkills), ", ")
}

func head(values []string, n int) []string {
	if len(values) > n {
		return values[:n]
	}
	return values
}
