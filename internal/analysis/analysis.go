// Package analysis extracts categorized skills from resume and job posting text.
package analysis

import (
	"context"
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
	// ResumeSystemMessage is sent with resume analysis prompts.
	ResumeSystemMessage = "You are an expert resume analyzer. Extract skills and create a structured skill tree. Always return valid JSON only."
	// JobSystemMessage is sent with job posting analysis prompts.
	JobSystemMessage = "You are an expert job posting analyzer. Extract required skills and key requirements. Always return valid JSON only."

	defaultMaxLogLength = 200
)

//go:embed resume_prompt.md
var resumePrompt string

//go:embed job_prompt.md
var jobPrompt string

//go:embed schema.json
var skillSchemaSource string

var skillSchema = ai.MustSchema("skill analysis", skillSchemaSource)

// Analyzer asks the oracle to categorize skills and falls back to keyword
// matching when it cannot.
type Analyzer struct {
	oracle    ai.Oracle
	logger    *zap.Logger
	maxLogLen int
}

// NewAnalyzer creates an Analyzer. A nil oracle always selects the keyword fallback.
func NewAnalyzer(oracle ai.Oracle, log *zap.Logger, maxLogLength int) *Analyzer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	provider, model := ai.Describe(oracle)
	return &Analyzer{
		oracle:    oracle,
		logger:    logger.WithCommonFields(log, provider, model),
		maxLogLen: maxLogLength,
	}
}

// Resume returns the skills found in resume text.
func (a *Analyzer) Resume(ctx context.Context, text string) skilltree.Data {
	doc, err := a.analyze(ctx, ResumeSystemMessage, resumePrompt, text)
	if err != nil {
		a.log().Warn("oracle resume analysis failed, using keyword extraction", zap.Error(err))
		return KeywordExtract(text)
	}
	return doc.Data
}

// Job returns the skills and the key requirements of a job posting.
func (a *Analyzer) Job(ctx context.Context, text string) (skilltree.Data, []string) {
	doc, err := a.analyze(ctx, JobSystemMessage, jobPrompt, text)
	if err != nil {
		a.log().Warn("oracle job analysis failed, using keyword extraction", zap.Error(err))
		return KeywordExtract(text), ExtractRequirements(text)
	}
	return doc.Data, doc.Requirements
}

func (a *Analyzer) analyze(ctx context.Context, system, template, text string) (*Document, error) {
	if a == nil || a.oracle == nil {
		return nil, ai.ErrOracleUnavailable
	}

	prompt := strings.ReplaceAll(template, "{{DOCUMENT}}", text)

	a.logger.Debug("oracle analysis request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, a.maxLogLen)),
	)

	raw, err := a.oracle.Classify(ctx, system, prompt)
	if err != nil {
		return nil, err
	}

	a.logger.Debug("oracle analysis response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, a.maxLogLen)),
	)

	return Parse(raw)
}

func (a *Analyzer) log() *zap.Logger {
	if a == nil || a.logger == nil {
		return zap.NewNop()
	}
	return a.logger
}
