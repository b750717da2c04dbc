// Package ai defines the semantic oracle consulted for skill extraction,
// skill matching and interview questions, together with helpers shared by
// every caller of it.
package ai

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DefaultTimeout bounds a single oracle call when no timeout is configured.
const DefaultTimeout = 60 * time.Second

// ErrOracleUnavailable marks any failure to obtain an answer from the oracle:
// it is not configured, the transport failed or the call timed out.
var ErrOracleUnavailable = errors.New("oracle unavailable")

// Oracle answers a prompt with free-form text, usually a JSON document.
type Oracle interface {
	Classify(ctx context.Context, system, prompt string) (string, error)
}

// Describer is implemented by oracles that can name their provider and model.
type Describer interface {
	Provider() string
	Model() string
}

// Describe returns provider and model of o when it implements Describer.
func Describe(o Oracle) (provider, model string) {
	if d, ok := o.(Describer); ok {
		return d.Provider(), d.Model()
	}
	return "", ""
}

// MalformedResponseError is returned when the oracle answered but the answer
// does not have the expected shape.
type MalformedResponseError struct {
	Reason string
	Raw    string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed oracle response: %s", e.Reason)
}

// Bounded limits every call of the wrapped oracle to Timeout. A call that
// outlives the timeout is abandoned and reported as ErrOracleUnavailable,
// even if the wrapped oracle ignores context cancellation.
type Bounded struct {
	Oracle  Oracle
	Timeout time.Duration
}

type classifyResult struct {
	out string
	err error
}

func (b Bounded) Classify(ctx context.Context, system, prompt string) (string, error) {
	if b.Oracle == nil {
		return "", ErrOracleUnavailable
	}

	timeout := b.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan classifyResult, 1)
	go func() {
		out, err := b.Oracle.Classify(ctx, system, prompt)
		done <- classifyResult{out: out, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %w", ErrOracleUnavailable, ctx.Err())
	case res := <-done:
		if res.err != nil {
			return "", fmt.Errorf("%w: %w", ErrOracleUnavailable, res.err)
		}
		return res.out, nil
	}
}

func (b Bounded) Provider() string {
	provider, _ := Describe(b.Oracle)
	return provider
}

func (b Bounded) Model() string {
	_, model := Describe(b.Oracle)
	return model
}
