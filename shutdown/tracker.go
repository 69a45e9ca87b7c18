// Package shutdown coordinates a graceful stop of the web server: it stops
// admitting model-calling requests, waits for the ones in flight, then runs
// cleanup steps in priority order.
package shutdown

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

var (
	// ErrDraining is returned when a request arrives after shutdown began.
	ErrDraining = errors.New("server is shutting down")

	// ErrDrainTimeout is returned when in-flight requests outlive the timeout.
	ErrDrainTimeout = errors.New("in-flight requests did not finish in time")
)

// RequestTracker counts in-flight requests and lets shutdown wait for them.
type RequestTracker struct {
	wg     sync.WaitGroup
	mu     sync.Mutex
	active atomic.Int64
	closed bool
}

// NewRequestTracker creates an open tracker.
func NewRequestTracker() *RequestTracker {
	return &RequestTracker{}
}

// Begin admits a request. It returns false once the tracker is closed; a
// true result must be paired with End.
func (t *RequestTracker) Begin() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return false
	}
	t.wg.Add(1)
	t.active.Add(1)
	return true
}

// End marks an admitted request as finished.
func (t *RequestTracker) End() {
	t.active.Add(-1)
	t.wg.Done()
}

// Close stops admitting requests. Requests already admitted keep running.
func (t *RequestTracker) Close() {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()
}

// Closed reports whether Close has been called.
func (t *RequestTracker) Closed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

// Active returns the number of admitted requests not yet ended.
func (t *RequestTracker) Active() int64 {
	return t.active.Load()
}

// Drain waits up to timeout for every admitted request to end.
func (t *RequestTracker) Drain(timeout time.Duration) error {
	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-done:
		return nil
	case <-timer.C:
		return ErrDrainTimeout
	}
}
