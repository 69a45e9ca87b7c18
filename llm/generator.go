// Package llm is the boundary to the hosted language models: one prompt in,
// plain text out. Provider SDKs live behind the Generator interface so the
// summarizer never sees which vendor answered.
package llm

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrEmptyResponse is returned when the model answered with no text.
	ErrEmptyResponse = errors.New("model returned an empty response")

	// ErrUnavailable is returned while the circuit breaker rejects calls.
	ErrUnavailable = errors.New("model API temporarily unavailable")
)

// DefaultMaxTokens caps completions. The longest output is a 500-character
// Korean paragraph, which fits comfortably.
const DefaultMaxTokens = 1024

// Request is a single completion request.
type Request struct {
	Model       string
	Prompt      string
	Temperature float64
	MaxTokens   int // Zero means DefaultMaxTokens
}

func (r Request) maxTokens() int {
	if r.MaxTokens > 0 {
		return r.MaxTokens
	}
	return DefaultMaxTokens
}

// Generator produces a completion for a prompt.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, req Request) (string, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// nonEmpty trims text and maps blank output to ErrEmptyResponse.
func nonEmpty(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
