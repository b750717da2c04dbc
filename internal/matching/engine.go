package matching

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/spigell/skillmatch/internal/ai"
	"github.com/spigell/skillmatch/internal/logger"
	"github.com/spigell/skillmatch/internal/utils"
)

// SystemMessage is sent along with every matching prompt.
const SystemMessage = "You are a skill matching expert. Always return valid JSON only."

const defaultMaxLogLength = 200

//go:embed prompt.md
var promptTemplate string

//go:embed schema.json
var resultSchemaSource string

var (
	resultSchema = ai.MustSchema("match result", resultSchemaSource)

	errIncomplete = errors.New("result does not place every skill in exactly one bucket")
)

// Engine matches skills with the oracle and falls back to Fallback whenever
// the oracle cannot produce a usable answer.
type Engine struct {
	oracle    ai.Oracle
	logger    *zap.Logger
	maxLogLen int
}

// NewEngine creates an Engine. A nil oracle makes every call use Fallback.
func NewEngine(oracle ai.Oracle, log *zap.Logger, maxLogLength int) *Engine {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	provider, model := ai.Describe(oracle)
	return &Engine{
		oracle:    oracle,
		logger:    logger.WithCommonFields(log, provider, model),
		maxLogLen: maxLogLength,
	}
}

// Match classifies the skills. It never fails: oracle errors, timeouts and
// unusable answers are logged and answered by Fallback.
func (e *Engine) Match(ctx context.Context, jobSkills, candidateSkills []string) *Result {
	if e == nil || e.oracle == nil || len(jobSkills) == 0 || len(candidateSkills) == 0 {
		return Fallback(jobSkills, candidateSkills)
	}

	result, err := e.matchWithOracle(ctx, jobSkills, candidateSkills)
	if err != nil {
		e.logger.Warn("oracle matching failed, using fallback",
			zap.Int("job_skills", len(jobSkills)),
			zap.Int("candidate_skills", len(candidateSkills)),
			zap.Error(err),
		)
		return Fallback(jobSkills, candidateSkills)
	}

	return result
}

func (e *Engine) matchWithOracle(ctx context.Context, jobSkills, candidateSkills []string) (*Result, error) {
	prompt, err := buildPrompt(jobSkills, candidateSkills)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("oracle match request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, e.maxLogLen)),
	)

	raw, err := e.oracle.Classify(ctx, SystemMessage, prompt)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("oracle match response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, e.maxLogLen)),
	)

	result, err := parseResponse(raw)
	if err != nil {
		return nil, err
	}

	if !result.Complete(jobSkills, candidateSkills) {
		return nil, &ai.MalformedResponseError{Reason: errIncomplete.Error(), Raw: raw}
	}

	return result, nil
}

func buildPrompt(jobSkills, candidateSkills []string) (string, error) {
	jobJSON, err := json.MarshalIndent(jobSkills, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal job skills: %w", err)
	}

	candidateJSON, err := json.MarshalIndent(candidateSkills, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal candidate skills: %w", err)
	}

	prompt := strings.ReplaceAll(promptTemplate, "{{JOB_SKILLS}}", string(jobJSON))
	prompt = strings.ReplaceAll(prompt, "{{CANDIDATE_SKILLS}}", string(candidateJSON))
	return prompt, nil
}

func parseResponse(raw string) (*Result, error) {
	cleaned := ai.ExtractJSON(raw)

	if err := resultSchema.Validate(cleaned); err != nil {
		return nil, err
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, &ai.MalformedResponseError{Reason: err.Error(), Raw: raw}
	}

	var result Result
	if err := mapstructure.Decode(data, &result); err != nil {
		return nil, &ai.MalformedResponseError{Reason: fmt.Sprintf("decode match result: %v", err), Raw: raw}
	}

	return result.normalize(), nil
}
