package handlers

import (
	"context"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"report_summarizer/core"
	"report_summarizer/logging"
	"report_summarizer/metrics"
	"report_summarizer/pdfprocessor"
	"report_summarizer/summarizer"
)

// Messages shown on the page.
const (
	msgReportRequired      = "보고서를 먼저 입력해 주세요."
	msgReportOrSample      = "보고서를 먼저 입력하거나 '샘플 입력 사용'을 눌러 주세요."
	msgQuestionRequired    = "추천 질문을 먼저 선택해 주세요."
	msgQuestionNotOffered  = "추천 목록에 없는 질문입니다. 목록에서 다시 선택해 주세요."
	msgQuestionsReady      = "추천 질문이 생성되었습니다. 오른쪽에서 선택하세요."
	msgNoQuestions         = "추천 질문을 만들지 못했습니다. 다시 시도해 주세요."
	msgLowText             = "추출된 텍스트가 거의 없습니다. 스캔형(이미지) PDF일 수 있어요. OCR 환경이 필요합니다."
	msgSummaryFailed       = "요약 중 오류가 발생했습니다: %v"
	msgQuestionsFailed     = "추천 질문 생성 중 오류가 발생했습니다: %v"
	msgPerspectiveFailed   = "관점 요약 생성 중 오류가 발생했습니다: %v"
	msgExtractFailed       = "PDF 처리 오류: %s"
	msgExtractDone         = "PDF 처리 완료: 총 %d페이지 / 추출된 문자 수: %d"
	msgExtractNothingToUse = "추출된 텍스트가 없어 입력창을 그대로 두었습니다."
)

// Action names used in logs and metrics.
const (
	ActionReset       = "reset"
	ActionSample      = "sample"
	ActionUpdate      = "update_report"
	ActionExtract     = "extract"
	ActionSummaries   = "summaries"
	ActionQuestions   = "questions"
	ActionSelect      = "select_question"
	ActionPerspective = "perspective"
)

// SummaryGenerator produces one length-limited summary.
type SummaryGenerator interface {
	Summarize(ctx context.Context, req summarizer.SummaryRequest) (string, error)
}

// QuestionRecommender proposes review angles for a report.
type QuestionRecommender interface {
	Recommend(ctx context.Context, report string, k int, model string) ([]string, error)
}

// PDFExtractor extracts text from an uploaded PDF.
type PDFExtractor interface {
	Extract(data []byte, maxPages int) (*pdfprocessor.ExtractionResult, bool)
}

// OrchestratorConfig wires an Orchestrator.
type OrchestratorConfig struct {
	Summarizer    SummaryGenerator
	Recommender   QuestionRecommender
	Extractor     PDFExtractor
	Policy        ModelPolicy
	SampleReport  string
	QuestionCount int // 0 uses summarizer.DefaultQuestionCount

	Recorder metrics.Recorder // Optional
	History  *metrics.Store   // Optional
	Logger   *logging.Logger  // Optional
}

// Orchestrator implements the page's actions. It holds no per-user state:
// every action receives the session it operates on.
type Orchestrator struct {
	summarizer    SummaryGenerator
	recommender   QuestionRecommender
	extractor     PDFExtractor
	policy        ModelPolicy
	sample        string
	questionCount int

	recorder metrics.Recorder
	history  *metrics.Store
	logger   *logging.Logger
}

// NewOrchestrator creates an Orchestrator from cfg.
func NewOrchestrator(cfg OrchestratorConfig) *Orchestrator {
	o := &Orchestrator{
		summarizer:    cfg.Summarizer,
		recommender:   cfg.Recommender,
		extractor:     cfg.Extractor,
		policy:        cfg.Policy,
		sample:        cfg.SampleReport,
		questionCount: cfg.QuestionCount,
		recorder:      cfg.Recorder,
		history:       cfg.History,
		logger:        cfg.Logger,
	}
	if o.questionCount <= 0 {
		o.questionCount = summarizer.DefaultQuestionCount
	}
	if o.recorder == nil {
		o.recorder = metrics.NopRecorder{}
	}
	if o.logger == nil {
		o.logger = logging.NewNopLogger()
	}
	o.logger = o.logger.Named("orchestrator")
	return o
}

// Policy returns the model policy the page renders its controls from.
func (o *Orchestrator) Policy() ModelPolicy {
	return o.policy
}

// Reset clears the report, the recommended questions and the selection.
func (o *Orchestrator) Reset(s *core.ReportSession) *Outcome {
	return o.run(ActionReset, s, func(out *Outcome) {
		s.Reset()
		out.Rerender = true
	})
}

// LoadSample fills the report with the sample report when it is blank.
func (o *Orchestrator) LoadSample(s *core.ReportSession) *Outcome {
	return o.run(ActionSample, s, func(out *Outcome) {
		out.Rerender = s.LoadSample(o.sample)
	})
}

// UpdateReport replaces the report with text typed or pasted by the user.
func (o *Orchestrator) UpdateReport(s *core.ReportSession, text string) *Outcome {
	return o.run(ActionUpdate, s, func(out *Outcome) {
		if s.ReportText() == text {
			return
		}
		s.ReplaceReport(text)
		out.Rerender = true
	})
}

// ExtractAndReplace extracts the uploaded PDF and, when requested and text
// was found, replaces the report with it. On failure the session is left
// unchanged.
func (o *Orchestrator) ExtractAndReplace(s *core.ReportSession, data []byte, opts ExtractOptions) *Outcome {
	return o.run(ActionExtract, s, func(out *Outcome) {
		result, _ := o.extractor.Extract(data, max(opts.MaxPages, 0))
		if result.Failed() {
			out.fail(fmt.Sprintf(msgExtractFailed, result.Error))
			return
		}

		chars := utf8.RuneCountInString(result.Text)
		out.success(fmt.Sprintf(msgExtractDone, result.TotalPages, chars))
		view := &ExtractionView{
			TotalPages: result.TotalPages,
			Chars:      chars,
			Preview:    pdfprocessor.Preview(result.Text, pdfprocessor.ClampPreviewChars(opts.PreviewChars)),
			LowText:    pdfprocessor.IsLowText(result.Text),
		}
		out.Extraction = view
		if view.LowText {
			out.warning(msgLowText)
		}

		if !opts.Replace {
			return
		}
		if result.Text == "" {
			out.info(msgExtractNothingToUse)
			return
		}
		s.ReplaceReport(result.Text)
		out.Rerender = true
	})
}

// GenerateSummaries writes the report at every default length. Each length
// is generated independently; a failure only affects its own item.
func (o *Orchestrator) GenerateSummaries(ctx context.Context, s *core.ReportSession, opts GenerationOptions) *Outcome {
	return o.run(ActionSummaries, s, func(out *Outcome) {
		if !s.HasReport() {
			out.warning(msgReportRequired)
			return
		}
		opts = o.normalize(out, opts)
		out.Summaries = o.summarizeAll(ctx, s.ReportText(), "", summarizer.DefaultLimits, opts,
			func(limit int) string { return fmt.Sprintf("%d자", limit) }, msgSummaryFailed)
	})
}

// GenerateQuestions replaces the recommended questions with a fresh list.
// On failure the previous list and selection are kept.
func (o *Orchestrator) GenerateQuestions(ctx context.Context, s *core.ReportSession, opts GenerationOptions) *Outcome {
	return o.run(ActionQuestions, s, func(out *Outcome) {
		if !s.HasReport() {
			out.warning(msgReportOrSample)
			return
		}
		opts = o.normalize(out, opts)
		questions, err := o.recommender.Recommend(ctx, s.ReportText(), o.questionCount, opts.Model)
		if err != nil {
			out.fail(fmt.Sprintf(msgQuestionsFailed, userError(err)))
			return
		}
		s.SetQuestions(questions)
		out.Rerender = true
		if len(questions) == 0 {
			out.warning(msgNoQuestions)
			return
		}
		out.success(msgQuestionsReady)
	})
}

// SelectQuestion selects one of the recommended questions.
func (o *Orchestrator) SelectQuestion(s *core.ReportSession, question string) *Outcome {
	return o.run(ActionSelect, s, func(out *Outcome) {
		if !s.Select(question) {
			out.warning(msgQuestionNotOffered)
			return
		}
		out.Rerender = true
	})
}

// GeneratePerspectiveSummary writes the report at the perspective lengths,
// focused on the selected question.
func (o *Orchestrator) GeneratePerspectiveSummary(ctx context.Context, s *core.ReportSession, opts GenerationOptions) *Outcome {
	return o.run(ActionPerspective, s, func(out *Outcome) {
		state := s.Snapshot()
		if !s.HasReport() {
			out.warning(msgReportRequired)
			return
		}
		if state.Selected == "" {
			out.warning(msgQuestionRequired)
			return
		}
		opts = o.normalize(out, opts)
		out.Perspective = state.Selected
		out.Summaries = o.summarizeAll(ctx, state.ReportText, state.Selected, summarizer.PerspectiveLimits, opts,
			func(limit int) string { return fmt.Sprintf("관점 요약 %d자", limit) }, msgPerspectiveFailed)
	})
}

// summarizeAll generates one summary per limit concurrently and returns the
// items in limit order.
func (o *Orchestrator) summarizeAll(ctx context.Context, report, perspective string, limits []int,
	opts GenerationOptions, label func(int) string, failMsg string) []SummaryItem {
	items := make([]SummaryItem, len(limits))
	var wg sync.WaitGroup
	for i, limit := range limits {
		items[i] = SummaryItem{Limit: limit, Label: label(limit)}
		wg.Add(1)
		go func(item *SummaryItem) {
			defer wg.Done()
			text, err := o.summarizer.Summarize(ctx, summarizer.SummaryRequest{
				Report:      report,
				Limit:       item.Limit,
				Perspective: perspective,
				Model:       opts.Model,
				Temperature: opts.Temperature,
			})
			if err != nil {
				item.Err = fmt.Sprintf(failMsg, userError(err))
				return
			}
			item.Text = text
			item.Chars = utf8.RuneCountInString(text)
		}(&items[i])
	}
	wg.Wait()
	return items
}

func (o *Orchestrator) normalize(out *Outcome, opts GenerationOptions) GenerationOptions {
	opts, msg := o.policy.Normalize(opts)
	if msg != "" {
		out.warning(msg)
	}
	return opts
}

// run executes one action and records it.
func (o *Orchestrator) run(action string, s *core.ReportSession, fn func(out *Outcome)) *Outcome {
	start := time.Now()
	out := &Outcome{}
	fn(out)
	duration := time.Since(start)

	result := out.metricOutcome()
	o.recorder.RecordAction(action, result, duration)
	if o.history != nil {
		o.history.RecordAction(metrics.ActionRecord{Action: action, Outcome: result, Start: start, Duration: duration})
	}

	fields := []zap.Field{
		zap.String("action", action),
		zap.String("outcome", result),
		zap.Duration("duration", duration),
		zap.Int("report_chars", utf8.RuneCountInString(s.ReportText())),
	}
	if result == metrics.OutcomeError {
		o.logger.Warn("action failed", fields...)
	} else {
		o.logger.Debug("action completed", fields...)
	}
	return out
}

// userError renders err for display with credentials removed.
func userError(err error) string {
	return logging.RedactSensitiveData(err.Error())
}
