package core

import (
	"slices"
	"strings"
	"sync"
	"time"
)

// DefaultSessionDuration is the default lifetime for an idle session (24 hours).
const DefaultSessionDuration = 24 * time.Hour

// ReportState is a point-in-time copy of a session's report state.
type ReportState struct {
	ReportText string
	Questions  []string
	Selected   string
}

// ReportSession holds the state one browser session accumulates: the report
// being reviewed, the recommended review angles and the angle the user
// picked. It is safe for concurrent use.
//
// Selected is always empty or an element of Questions.
type ReportSession struct {
	ID        string
	CreatedAt time.Time

	mu         sync.Mutex
	reportText string
	questions  []string
	selected   string
}

// NewReportSession creates an empty session with the given ID.
func NewReportSession(id string) *ReportSession {
	return &ReportSession{
		ID:        id,
		CreatedAt: time.Now(),
	}
}

// Snapshot returns a copy of the current state.
func (s *ReportSession) Snapshot() ReportState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ReportState{
		ReportText: s.reportText,
		Questions:  slices.Clone(s.questions),
		Selected:   s.selected,
	}
}

// ReportText returns the current report text.
func (s *ReportSession) ReportText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reportText
}

// HasReport reports whether the report text contains anything besides whitespace.
func (s *ReportSession) HasReport() bool {
	return strings.TrimSpace(s.ReportText()) != ""
}

// Selected returns the selected question, or "" when none is selected.
func (s *ReportSession) Selected() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// Reset clears the report, the recommended questions and the selection.
func (s *ReportSession) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reportText = ""
	s.questions = nil
	s.selected = ""
}

// LoadSample stores sample as the report text when the current report is
// blank. It returns true if the report was filled.
func (s *ReportSession) LoadSample(sample string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if strings.TrimSpace(s.reportText) != "" {
		return false
	}
	s.reportText = sample
	return true
}

// ReplaceReport overwrites the report text.
func (s *ReportSession) ReplaceReport(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reportText = text
}

// SetQuestions replaces the recommended questions. The current selection
// survives only if it is still one of them.
func (s *ReportSession) SetQuestions(questions []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.questions = slices.Clone(questions)
	if !slices.Contains(s.questions, s.selected) {
		s.selected = ""
	}
}

// Select marks q as the selected question. It returns false and leaves the
// selection unchanged when q is not one of the recommended questions.
func (s *ReportSession) Select(q string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !slices.Contains(s.questions, q) {
		return false
	}
	s.selected = q
	return true
}
