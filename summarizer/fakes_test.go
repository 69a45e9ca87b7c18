package summarizer

import (
	"context"
	"sync"
	"time"

	"report_summarizer/llm"
)

// scriptedGenerator returns canned output and remembers every request.
type scriptedGenerator struct {
	mu       sync.Mutex
	output   string
	err      error
	requests []llm.Request
}

func (g *scriptedGenerator) Generate(_ context.Context, req llm.Request) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests = append(g.requests, req)
	if g.err != nil {
		return "", g.err
	}
	return g.output, nil
}

func (g *scriptedGenerator) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.requests)
}

type summaryObservation struct {
	limit, length int
}

type fakeRecorder struct {
	mu         sync.Mutex
	summaries  []summaryObservation
	errors     []string
	fromModel  int
	fromBackup int
}

func (r *fakeRecorder) RecordSummary(limit, length int, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.summaries = append(r.summaries, summaryObservation{limit, length})
}

func (r *fakeRecorder) RecordGenerationError(op string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, op)
}

func (r *fakeRecorder) RecordQuestions(fromModel, fromBackup int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fromModel += fromModel
	r.fromBackup += fromBackup
}

func (r *fakeRecorder) RecordExtraction(int, bool, bool) {}
func (r *fakeRecorder) RecordAction(string, string, time.Duration) {}
