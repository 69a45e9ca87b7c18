package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"report_summarizer/logging"
)

// BreakerConfig tunes BreakerGenerator.
type BreakerConfig struct {
	// Name identifies the breaker in logs
	Name string

	// CallTimeout bounds each model call; zero leaves the context alone
	CallTimeout time.Duration

	// MaxRequests is the number of trial calls allowed while half-open
	MaxRequests uint32

	// Interval clears the closed-state counts
	Interval time.Duration

	// OpenTimeout is how long the breaker stays open before a trial call
	OpenTimeout time.Duration

	// FailureThreshold is the failure ratio that trips the breaker
	FailureThreshold float64

	// MinRequests is the number of calls needed before the ratio counts
	MinRequests uint32
}

// DefaultBreakerConfig returns settings suited to interactive model calls.
func DefaultBreakerConfig(name string, callTimeout time.Duration) BreakerConfig {
	return BreakerConfig{
		Name:             name,
		CallTimeout:      callTimeout,
		MaxRequests:      2,
		Interval:         60 * time.Second,
		OpenTimeout:      30 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      5,
	}
}

// BreakerGenerator guards a Generator with a per-call timeout and a circuit
// breaker. Calls are never retried: a failed generation surfaces to the
// user, who can press the button again.
type BreakerGenerator struct {
	next        Generator
	breaker     *gobreaker.CircuitBreaker
	callTimeout time.Duration
}

// NewBreakerGenerator wraps next.
func NewBreakerGenerator(next Generator, cfg BreakerConfig, logger *logging.Logger) *BreakerGenerator {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureThreshold
		},
		// The caller giving up is not a fault of the model API.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("circuit", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}

	return &BreakerGenerator{
		next:        next,
		breaker:     gobreaker.NewCircuitBreaker(settings),
		callTimeout: cfg.CallTimeout,
	}
}

// Generate implements Generator.
func (g *BreakerGenerator) Generate(ctx context.Context, req Request) (string, error) {
	if g.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.callTimeout)
		defer cancel()
	}

	out, err := g.breaker.Execute(func() (interface{}, error) {
		return g.next.Generate(ctx, req)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return "", err
	}
	return out.(string), nil
}

// State returns the breaker state, e.g. for the health endpoint.
func (g *BreakerGenerator) State() gobreaker.State {
	return g.breaker.State()
}
