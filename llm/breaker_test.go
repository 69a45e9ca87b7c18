package llm

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"
)

func TestBreakerGenerator_PassesThrough(t *testing.T) {
	next := GeneratorFunc(func(ctx context.Context, req Request) (string, error) {
		return "echo:" + req.Prompt, nil
	})
	g := NewBreakerGenerator(next, DefaultBreakerConfig("test", time.Second), nil)

	out, err := g.Generate(context.Background(), Request{Prompt: "hi"})
	if err != nil || out != "echo:hi" {
		t.Errorf("Generate() = %q, %v", out, err)
	}
}

func TestBreakerGenerator_OpensAfterFailuresWithoutRetrying(t *testing.T) {
	var calls int32
	upstream := errors.New("503 service unavailable")
	next := GeneratorFunc(func(ctx context.Context, req Request) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "", upstream
	})

	cfg := DefaultBreakerConfig("test", 0)
	cfg.MinRequests = 3
	cfg.FailureThreshold = 0.5
	g := NewBreakerGenerator(next, cfg, nil)

	for i := 0; i < 3; i++ {
		if _, err := g.Generate(context.Background(), Request{}); !errors.Is(err, upstream) {
			t.Fatalf("call %d: error = %v, want upstream error", i, err)
		}
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("upstream calls = %d, want exactly 3", got)
	}
	if g.State() != gobreaker.StateOpen {
		t.Fatalf("State() = %v, want open", g.State())
	}

	_, err := g.Generate(context.Background(), Request{})
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("error while open = %v, want ErrUnavailable", err)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("open breaker must not call upstream, calls = %d", got)
	}
}

func TestBreakerGenerator_AppliesCallTimeout(t *testing.T) {
	next := GeneratorFunc(func(ctx context.Context, req Request) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	g := NewBreakerGenerator(next, DefaultBreakerConfig("test", 20*time.Millisecond), nil)

	start := time.Now()
	_, err := g.Generate(context.Background(), Request{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want deadline exceeded", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Error("call timeout was not applied")
	}
}

func TestBreakerGenerator_CancellationDoesNotTrip(t *testing.T) {
	next := GeneratorFunc(func(ctx context.Context, req Request) (string, error) {
		return "", context.Canceled
	})
	cfg := DefaultBreakerConfig("test", 0)
	cfg.MinRequests = 1
	g := NewBreakerGenerator(next, cfg, nil)

	for i := 0; i < 5; i++ {
		g.Generate(context.Background(), Request{})
	}
	if g.State() != gobreaker.StateClosed {
		t.Errorf("State() = %v, want closed", g.State())
	}
}
