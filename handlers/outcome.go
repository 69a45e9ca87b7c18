package handlers

import "report_summarizer/metrics"

// NoticeLevel is the severity of a message shown on the page.
type NoticeLevel string

// Notice levels, from least to most severe.
const (
	LevelInfo    NoticeLevel = "info"
	LevelSuccess NoticeLevel = "success"
	LevelWarning NoticeLevel = "warning"
	LevelError   NoticeLevel = "error"
)

// Notice is one message shown above the results.
type Notice struct {
	Level   NoticeLevel
	Message string
}

// SummaryItem is one generated summary, or the error that replaced it.
type SummaryItem struct {
	Limit int
	Label string // Tab label, e.g. "300자" or "관점 요약 300자"
	Text  string
	Chars int
	Err   string // Set instead of Text when this summary failed
}

// ExtractionView is what the page shows after a successful PDF extraction.
type ExtractionView struct {
	TotalPages int
	Chars      int
	Preview    string
	LowText    bool
}

// Outcome is the result of one orchestrator action. Summaries are rendered
// once and never stored in the session.
type Outcome struct {
	Notices     []Notice
	Summaries   []SummaryItem
	Perspective string // Review angle the summaries were written for
	Extraction  *ExtractionView

	// Rerender asks the caller to redraw the page from session state,
	// because the report or the question list changed.
	Rerender bool
}

func (o *Outcome) info(msg string)    { o.add(LevelInfo, msg) }
func (o *Outcome) success(msg string) { o.add(LevelSuccess, msg) }
func (o *Outcome) warning(msg string) { o.add(LevelWarning, msg) }
func (o *Outcome) fail(msg string)    { o.add(LevelError, msg) }

func (o *Outcome) add(level NoticeLevel, msg string) {
	o.Notices = append(o.Notices, Notice{Level: level, Message: msg})
}

// HasLevel reports whether any notice, or any summary failure for
// LevelError, has the given level.
func (o *Outcome) HasLevel(level NoticeLevel) bool {
	for _, n := range o.Notices {
		if n.Level == level {
			return true
		}
	}
	if level == LevelError {
		for _, s := range o.Summaries {
			if s.Err != "" {
				return true
			}
		}
	}
	return false
}

// metricOutcome collapses the outcome to the label recorded in metrics.
func (o *Outcome) metricOutcome() string {
	switch {
	case o.HasLevel(LevelError):
		return metrics.OutcomeError
	case o.HasLevel(LevelWarning):
		return metrics.OutcomeWarning
	default:
		return metrics.OutcomeSuccess
	}
}
