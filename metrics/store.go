package metrics

import (
	"sync"
	"time"
)

// DefaultHistoryCapacity is the number of recent actions kept.
const DefaultHistoryCapacity = 50

// Store keeps per-action counters and a ring buffer of recent actions.
// It is safe for concurrent use.
type Store struct {
	mu        sync.RWMutex
	history   []ActionRecord
	head      int
	size      int
	byAction  map[string]*actionTotals
	startTime time.Time
}

type actionTotals struct {
	count    int64
	errors   int64
	duration time.Duration
}

// NewStore creates a Store. capacity < 1 uses DefaultHistoryCapacity.
func NewStore(capacity int, startTime time.Time) *Store {
	if capacity < 1 {
		capacity = DefaultHistoryCapacity
	}
	return &Store{
		history:   make([]ActionRecord, capacity),
		byAction:  make(map[string]*actionTotals),
		startTime: startTime,
	}
}

// RecordAction adds a finished action.
func (s *Store) RecordAction(rec ActionRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history[s.head] = rec
	s.head = (s.head + 1) % len(s.history)
	if s.size < len(s.history) {
		s.size++
	}

	totals, ok := s.byAction[rec.Action]
	if !ok {
		totals = &actionTotals{}
		s.byAction[rec.Action] = totals
	}
	totals.count++
	if rec.Outcome == OutcomeError {
		totals.errors++
	}
	totals.duration += rec.Duration
}

// Recent returns up to limit records, most recent first.
func (s *Store) Recent(limit int) []ActionRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit > s.size {
		limit = s.size
	}
	if limit <= 0 {
		return []ActionRecord{}
	}

	out := make([]ActionRecord, limit)
	for i := 0; i < limit; i++ {
		idx := (s.head - 1 - i + len(s.history)) % len(s.history)
		out[i] = s.history[idx]
	}
	return out
}

// Stats returns per-action aggregates.
func (s *Store) Stats() map[string]*ActionStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]*ActionStats, len(s.byAction))
	for name, totals := range s.byAction {
		stats := &ActionStats{Count: totals.count, Errors: totals.errors}
		if totals.count > 0 {
			stats.AvgDuration = totals.duration / time.Duration(totals.count)
		}
		out[name] = stats
	}
	return out
}

// Uptime returns the time since the store was created.
func (s *Store) Uptime() time.Duration {
	return time.Since(s.startTime)
}

// Snapshot assembles the health view.
func (s *Store) Snapshot(recent int) Snapshot {
	return Snapshot{
		Status:  "ok",
		Uptime:  s.Uptime().Round(time.Second).String(),
		Actions: s.Stats(),
		Recent:  s.Recent(recent),
	}
}
