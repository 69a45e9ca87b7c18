package shutdown

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"report_summarizer/core"
)

// DefaultTimeout bounds the whole shutdown sequence. It should exceed the
// model API timeout so a summary in progress can finish.
const DefaultTimeout = 90 * time.Second

// Manager ties signal handling, request draining and cleanup together.
//
//	mgr := shutdown.NewManager(logger.Zap())
//	mgr.OnShutdown("http-server", shutdown.PriorityServer, srv.Shutdown)
//	mgr.Listen()
//	<-mgr.Context().Done()
//	err := mgr.Shutdown()
type Manager struct {
	logger  *zap.Logger
	timeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	tracker *RequestTracker
	steps   stepRegistry
	latch   signalLatch
	sigCh   chan os.Signal

	mu        sync.Mutex
	listening bool
	done      bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(timeout time.Duration) Option {
	return func(m *Manager) {
		m.timeout = timeout
	}
}

// WithForceExit replaces the action taken on a second signal, which by
// default exits the process immediately.
func WithForceExit(fn func()) Option {
	return func(m *Manager) {
		m.latch.onForce = fn
	}
}

// NewManager creates a Manager. Nothing happens on signals until Listen.
func NewManager(logger *zap.Logger, opts ...Option) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		logger:  logger,
		timeout: DefaultTimeout,
		ctx:     ctx,
		cancel:  cancel,
		tracker: NewRequestTracker(),
		sigCh:   make(chan os.Signal, 2),
	}
	m.latch.onForce = func() {
		m.logger.Warn("second signal received, exiting immediately")
		os.Exit(core.ExitCodeError)
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Context is cancelled when the first shutdown signal arrives or Stop is called.
func (m *Manager) Context() context.Context {
	return m.ctx
}

// OnShutdown registers a cleanup step.
func (m *Manager) OnShutdown(name string, priority int, fn Step) {
	m.steps.add(name, priority, fn)
	m.logger.Debug("registered shutdown step", zap.String("name", name), zap.Int("priority", priority))
}

// Steps returns the registered step names in execution order.
func (m *Manager) Steps() []string {
	return m.steps.names()
}

// Listen starts watching SIGINT and SIGTERM. Calling it again is a no-op.
func (m *Manager) Listen() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listening {
		return
	}
	m.listening = true

	signal.Notify(m.sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		for sig := range m.sigCh {
			m.handleSignal(sig)
		}
	}()
}

func (m *Manager) handleSignal(sig os.Signal) {
	if m.latch.receive(sig) {
		m.logger.Info("shutdown signal received", zap.String("signal", sig.String()))
		m.cancel()
	}
}

// Stop begins shutdown without a signal, e.g. when the server fails.
func (m *Manager) Stop() {
	m.cancel()
}

// Signal returns the signal that started shutdown, or nil.
func (m *Manager) Signal() os.Signal {
	return m.latch.signal()
}

// Guard wraps h so it is counted as in flight and rejected with 503 once
// shutdown has begun.
func (m *Manager) Guard(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.tracker.Begin() {
			http.Error(w, ErrDraining.Error(), http.StatusServiceUnavailable)
			return
		}
		defer m.tracker.End()
		h.ServeHTTP(w, r)
	})
}

// InFlight returns the number of guarded requests running.
func (m *Manager) InFlight() int64 {
	return m.tracker.Active()
}

// ShuttingDown reports whether Shutdown has started.
func (m *Manager) ShuttingDown() bool {
	return m.tracker.Closed()
}

// Shutdown stops admitting guarded requests, waits for those in flight and
// runs the cleanup steps with whatever time remains. Later calls return nil.
func (m *Manager) Shutdown() error {
	m.mu.Lock()
	if m.done {
		m.mu.Unlock()
		return nil
	}
	m.done = true
	if m.listening {
		signal.Stop(m.sigCh)
	}
	m.mu.Unlock()
	m.cancel()

	start := time.Now()
	m.tracker.Close()
	if n := m.tracker.Active(); n > 0 {
		m.logger.Info("waiting for in-flight requests", zap.Int64("active", n))
	}

	var errs []error
	if err := m.tracker.Drain(m.timeout); err != nil {
		m.logger.Warn("in-flight requests still running", zap.Int64("active", m.tracker.Active()))
		errs = append(errs, err)
	}

	remaining := max(m.timeout-time.Since(start), time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), remaining)
	defer cancel()

	for _, err := range m.steps.run(ctx) {
		m.logger.Error("shutdown step failed", zap.Error(err))
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown: %w", errors.Join(errs...))
	}
	m.logger.Info("shutdown complete", zap.Duration("duration", time.Since(start)))
	return nil
}
