package ratelimit

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"golang.org/x/time/rate"
)

// HostLimiter rate-limits outbound requests per hostname so one run
// never hammers a single feed host, image CDN, or API backend. All
// fetchers in a run share one instance.
type HostLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// NewHostLimiter creates a limiter allowing reqPerSec requests per host
// with the given burst.
func NewHostLimiter(reqPerSec float64, burst int) *HostLimiter {
	return &HostLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(reqPerSec),
		burst:    burst,
	}
}

func (hl *HostLimiter) limiterFor(host string) *rate.Limiter {
	hl.mu.Lock()
	defer hl.mu.Unlock()

	if lim, ok := hl.limiters[host]; ok {
		return lim
	}
	lim := rate.NewLimiter(hl.limit, hl.burst)
	hl.limiters[host] = lim
	return lim
}

// WaitURL blocks until the limiter for rawURL's host allows a request.
// URLs that fail to parse share a single fallback limiter.
func (hl *HostLimiter) WaitURL(ctx context.Context, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		if werr := hl.limiterFor("_").Wait(ctx); werr != nil {
			return fmt.Errorf("rate limiter wait: %w", werr)
		}
		return nil
	}
	if werr := hl.limiterFor(u.Host).Wait(ctx); werr != nil {
		return fmt.Errorf("rate limiter wait for %s: %w", u.Host, werr)
	}
	return nil
}
