package shutdown

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// Step is one cleanup action run during shutdown.
type Step func(ctx context.Context) error

// Cleanup priorities; lower runs first.
const (
	PriorityServer = 10 // stop accepting connections
	PriorityCaches = 50 // drop in-memory sessions and extraction results
	PriorityLogs   = 90 // flush logs last so earlier steps are recorded
)

type step struct {
	name     string
	priority int
	fn       Step
}

// stepRegistry keeps cleanup steps and runs them once, ordered by priority.
// Steps with equal priority run in registration order.
type stepRegistry struct {
	mu    sync.Mutex
	steps []step
	ran   bool
}

func (r *stepRegistry) add(name string, priority int, fn Step) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ran {
		return
	}
	r.steps = append(r.steps, step{name: name, priority: priority, fn: fn})
}

func (r *stepRegistry) ordered() []step {
	sorted := slices.Clone(r.steps)
	slices.SortStableFunc(sorted, func(a, b step) int { return a.priority - b.priority })
	return sorted
}

func (r *stepRegistry) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var names []string
	for _, s := range r.ordered() {
		names = append(names, s.name)
	}
	return names
}

// run executes every step, even after failures, and returns the failures
// labelled with the step name.
func (r *stepRegistry) run(ctx context.Context) []error {
	r.mu.Lock()
	if r.ran {
		r.mu.Unlock()
		return nil
	}
	r.ran = true
	steps := r.ordered()
	r.mu.Unlock()

	var errs []error
	for _, s := range steps {
		if err := s.fn(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.name, err))
		}
	}
	return errs
}
