package metrics

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestStore_RecentIsNewestFirstAndBounded(t *testing.T) {
	s := NewStore(3, time.Now())
	for i := 0; i < 5; i++ {
		s.RecordAction(ActionRecord{Action: fmt.Sprintf("a%d", i), Outcome: OutcomeSuccess})
	}

	recent := s.Recent(10)
	if len(recent) != 3 {
		t.Fatalf("len(Recent) = %d, want 3", len(recent))
	}
	for i, want := range []string{"a4", "a3", "a2"} {
		if recent[i].Action != want {
			t.Errorf("Recent[%d] = %s, want %s", i, recent[i].Action, want)
		}
	}
	if got := s.Recent(0); len(got) != 0 {
		t.Errorf("Recent(0) = %v", got)
	}
}

func TestStore_Stats(t *testing.T) {
	s := NewStore(0, time.Now())
	s.RecordAction(ActionRecord{Action: "extract", Outcome: OutcomeSuccess, Duration: 100 * time.Millisecond})
	s.RecordAction(ActionRecord{Action: "extract", Outcome: OutcomeError, Duration: 300 * time.Millisecond})
	s.RecordAction(ActionRecord{Action: "reset", Outcome: OutcomeSuccess})

	stats := s.Stats()
	extract := stats["extract"]
	if extract == nil || extract.Count != 2 || extract.Errors != 1 || extract.AvgDuration != 200*time.Millisecond {
		t.Errorf("extract stats = %+v", extract)
	}
	if stats["reset"].Count != 1 {
		t.Errorf("reset stats = %+v", stats["reset"])
	}

	snap := s.Snapshot(5)
	if snap.Status != "ok" || len(snap.Recent) != 3 {
		t.Errorf("Snapshot() = %+v", snap)
	}
}

func TestStore_Concurrent(t *testing.T) {
	s := NewStore(10, time.Now())
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.RecordAction(ActionRecord{Action: "x", Outcome: OutcomeSuccess})
			s.Recent(5)
		}()
	}
	wg.Wait()
	if got := s.Stats()["x"].Count; got != 50 {
		t.Errorf("Count = %d, want 50", got)
	}
}
