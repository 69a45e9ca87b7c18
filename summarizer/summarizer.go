// Package summarizer turns a student's project report into fixed-length
// Korean summaries and suggests review angles a reviewer can summarize by.
package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"report_summarizer/llm"
	"report_summarizer/logging"
	"report_summarizer/metrics"
)

var (
	// ErrEmptyReport is returned when the report is blank.
	ErrEmptyReport = errors.New("report text is empty")

	// ErrInvalidLimit is returned for a non-positive character budget.
	ErrInvalidLimit = errors.New("character limit must be positive")
)

// Character budgets offered by the UI.
var (
	DefaultLimits     = []int{50, 100, 300, 500}
	PerspectiveLimits = []int{300, 500}
)

// SummaryRequest describes one summary to generate.
type SummaryRequest struct {
	Report      string
	Limit       int
	Perspective string // Optional review angle; empty for a general summary
	Model       string
	Temperature float64
}

// Summarizer generates length-limited summaries with one model call each.
type Summarizer struct {
	gen      llm.Generator
	recorder metrics.Recorder
	logger   *logging.Logger
}

// NewSummarizer creates a Summarizer. A nil recorder or logger disables
// metrics or logging respectively.
func NewSummarizer(gen llm.Generator, recorder metrics.Recorder, logger *logging.Logger) *Summarizer {
	if recorder == nil {
		recorder = metrics.NopRecorder{}
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Summarizer{gen: gen, recorder: recorder, logger: logger.Named("summarizer")}
}

// Summarize asks the model for a summary of req.Report and trims the answer
// to req.Limit characters. There is no caching and no retry; model errors are
// returned wrapped.
func (s *Summarizer) Summarize(ctx context.Context, req SummaryRequest) (string, error) {
	if strings.TrimSpace(req.Report) == "" {
		return "", ErrEmptyReport
	}
	if req.Limit <= 0 {
		return "", fmt.Errorf("%w: %d", ErrInvalidLimit, req.Limit)
	}

	start := time.Now()
	raw, err := s.gen.Generate(ctx, llm.Request{
		Model:       req.Model,
		Prompt:      BuildSummaryPrompt(req.Report, req.Limit, req.Perspective),
		Temperature: req.Temperature,
	})
	duration := time.Since(start)
	if err != nil {
		s.recorder.RecordGenerationError("summary")
		s.logger.Warn("summary generation failed",
			zap.Int("limit", req.Limit),
			zap.String("model", req.Model),
			zap.Duration("duration", duration),
			zap.Error(err))
		return "", fmt.Errorf("%d-character summary: %w", req.Limit, err)
	}

	summary := TrimToChars(raw, req.Limit)
	s.recorder.RecordSummary(req.Limit, CountChars(summary), duration)
	s.logger.Info("summary generated", logging.GenerationFields(logging.GenerationMetrics{
		Operation:   "summary",
		Model:       req.Model,
		Limit:       req.Limit,
		Perspective: req.Perspective != "",
		InputChars:  CountChars(req.Report),
		RawChars:    CountChars(raw),
		OutputChars: CountChars(summary),
		Duration:    duration,
	}))
	return summary, nil
}
