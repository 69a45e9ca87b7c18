package webui

import (
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// limiterIdleTTL is how long an idle client's limiter is kept.
const limiterIdleTTL = 30 * time.Minute

// RateLimiter throttles model-calling actions per client IP with a token
// bucket. Idle clients are forgotten after limiterIdleTTL.
type RateLimiter struct {
	limit   rate.Limit
	burst   int
	clients *cache.Cache
}

// NewRateLimiter allows rps actions per second per client with the given
// burst. A non-positive rps disables limiting.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limit:   limit,
		burst:   burst,
		clients: cache.New(limiterIdleTTL, limiterIdleTTL/2),
	}
}

// Allow reports whether the client may run another action now.
func (l *RateLimiter) Allow(client string) bool {
	return l.limiter(client).Allow()
}

func (l *RateLimiter) limiter(client string) *rate.Limiter {
	if v, found := l.clients.Get(client); found {
		lim := v.(*rate.Limiter)
		l.clients.SetDefault(client, lim)
		return lim
	}
	lim := rate.NewLimiter(l.limit, l.burst)
	if err := l.clients.Add(client, lim, cache.DefaultExpiration); err != nil {
		// Another request created it first.
		if v, found := l.clients.Get(client); found {
			return v.(*rate.Limiter)
		}
	}
	return lim
}

// Count returns the number of clients being tracked.
func (l *RateLimiter) Count() int {
	return l.clients.ItemCount()
}
