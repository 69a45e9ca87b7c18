package logging

import (
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// GenerationMetrics describes one model-backed generation for logging.
// It carries sizes only; report and summary text never reach the log.
type GenerationMetrics struct {
	Operation   string // "summary" or "questions"
	Model       string
	Limit       int // Character budget; zero for question generation
	Perspective bool
	InputChars  int
	RawChars    int
	OutputChars int
	Duration    time.Duration
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (m GenerationMetrics) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("operation", m.Operation)
	enc.AddString("model", m.Model)
	if m.Limit > 0 {
		enc.AddInt("limit", m.Limit)
	}
	enc.AddBool("perspective", m.Perspective)
	enc.AddInt("input_chars", m.InputChars)
	enc.AddInt("raw_chars", m.RawChars)
	enc.AddInt("output_chars", m.OutputChars)
	enc.AddDuration("duration", m.Duration)
	return nil
}

// GenerationFields wraps metrics into a single "generation" field.
//
//	logger.Info("summary generated", logging.GenerationFields(m))
func GenerationFields(m GenerationMetrics) zap.Field {
	return zap.Object("generation", m)
}

// ExtractionFields returns the fields logged after a PDF extraction.
func ExtractionFields(pages, processed, chars int, cached bool) []zap.Field {
	return []zap.Field{
		zap.Int("total_pages", pages),
		zap.Int("processed_pages", processed),
		zap.Int("text_chars", chars),
		zap.Bool("cache_hit", cached),
	}
}
