package summarizer

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"report_summarizer/llm"
	"report_summarizer/logging"
	"report_summarizer/metrics"
)

const (
	// DefaultQuestionCount is used when Recommend is called with k <= 0.
	DefaultQuestionCount = 5

	// MaxQuestionChars is the longest review angle accepted.
	MaxQuestionChars = 30

	// DefaultQuestionTemperature keeps suggestions focused.
	DefaultQuestionTemperature = 0.3
)

// DefaultBackupQuestions pad the list when the model returns too few usable lines.
var DefaultBackupQuestions = []string{
	"데이터 전처리의 타당성 중심",
	"모델 선택과 하이퍼파라미터 근거",
	"예측 결과의 신뢰도와 한계",
	"협업의 역할 분담·갈등 해결",
	"다음 단계와 개선 계획",
}

// Recommender suggests short review angles for a report.
type Recommender struct {
	gen         llm.Generator
	backups     []string
	temperature float64
	recorder    metrics.Recorder
	logger      *logging.Logger
}

// NewRecommender creates a Recommender. A nil backups slice uses
// DefaultBackupQuestions; an empty one disables padding.
func NewRecommender(gen llm.Generator, backups []string, temperature float64, recorder metrics.Recorder, logger *logging.Logger) *Recommender {
	if backups == nil {
		backups = DefaultBackupQuestions
	}
	if recorder == nil {
		recorder = metrics.NopRecorder{}
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Recommender{
		gen:         gen,
		backups:     slices.Clone(backups),
		temperature: temperature,
		recorder:    recorder,
		logger:      logger.Named("recommender"),
	}
}

// Recommend returns at most k distinct review angles of at most
// MaxQuestionChars characters each: the model's usable suggestions first,
// then backup phrases.
func (r *Recommender) Recommend(ctx context.Context, report string, k int, model string) ([]string, error) {
	if strings.TrimSpace(report) == "" {
		return nil, ErrEmptyReport
	}
	if k <= 0 {
		k = DefaultQuestionCount
	}

	start := time.Now()
	raw, err := r.gen.Generate(ctx, llm.Request{
		Model:       model,
		Prompt:      BuildQuestionPrompt(report, k),
		Temperature: r.temperature,
	})
	if err != nil {
		r.recorder.RecordGenerationError("questions")
		r.logger.Warn("question generation failed", zap.String("model", model), zap.Error(err))
		return nil, fmt.Errorf("question recommendation: %w", err)
	}

	parsed := ParseQuestions(raw, k)
	questions := FillWithBackups(parsed, k, r.backups)
	r.recorder.RecordQuestions(len(parsed), len(questions)-len(parsed))
	r.logger.Info("questions generated",
		logging.GenerationFields(logging.GenerationMetrics{
			Operation:   "questions",
			Model:       model,
			InputChars:  CountChars(report),
			RawChars:    CountChars(raw),
			OutputChars: len(questions),
			Duration:    time.Since(start),
		}),
		zap.Int("from_model", len(parsed)))
	return questions, nil
}

// ParseQuestions extracts up to k review angles from model output: one per
// line, with dashes, bullets and spaces trimmed from both ends. Blank lines,
// lines longer than MaxQuestionChars and exact duplicates are dropped.
func ParseQuestions(raw string, k int) []string {
	var out []string
	if k <= 0 {
		return out
	}
	for _, line := range strings.Split(raw, "\n") {
		q := strings.TrimSpace(strings.Trim(line, "-• "))
		if q == "" || CountChars(q) > MaxQuestionChars || slices.Contains(out, q) {
			continue
		}
		out = append(out, q)
		if len(out) == k {
			break
		}
	}
	return out
}

// FillWithBackups appends backup phrases not already present until the
// list holds k entries or the backups run out. Backups longer than
// MaxQuestionChars are skipped.
func FillWithBackups(questions []string, k int, backups []string) []string {
	out := slices.Clone(questions)
	for _, b := range backups {
		if len(out) >= k {
			break
		}
		if b == "" || CountChars(b) > MaxQuestionChars || slices.Contains(out, b) {
			continue
		}
		out = append(out, b)
	}
	if len(out) > k {
		out = out[:max(k, 0)]
	}
	return out
}
