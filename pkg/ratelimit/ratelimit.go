// Package ratelimit provides keyed token-bucket rate limiting for HTTP
// surfaces, with idle-limiter cleanup driven by a monotonic clock.
package ratelimit

import (
	"net/http"
	"strings"
	"sync"

	"github.com/timekit-io/timekit/pkg/clock"
	"github.com/timekit-io/timekit/pkg/timespan"
	"golang.org/x/time/rate"
)

type entry struct {
	limiter  *rate.Limiter
	lastSeen timespan.Instant
}

// Limiter provides per-key rate limiting
type Limiter struct {
	entries map[string]*entry
	mu      sync.Mutex
	rps     rate.Limit
	burst   int
	clk     clock.Clock
}

// NewLimiter creates a new rate limiter
// rps: requests per second
// burst: maximum burst size
func NewLimiter(rps float64, burst int, clk clock.Clock) *Limiter {
	if clk == nil {
		clk = clock.System()
	}
	return &Limiter{
		entries: make(map[string]*entry),
		rps:     rate.Limit(rps),
		burst:   burst,
		clk:     clk,
	}
}

// GetLimiter returns the rate limiter for the given key (e.g. IP address or
// API key), creating it on first use and refreshing its last-seen instant.
func (l *Limiter) GetLimiter(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, exists := l.entries[key]
	if !exists {
		e = &entry{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.entries[key] = e
	}
	e.lastSeen = l.clk.Now()

	return e.limiter
}

// Allow checks if a request should be allowed
func (l *Limiter) Allow(key string) bool {
	return l.GetLimiter(key).Allow()
}

// Middleware creates an HTTP middleware for rate limiting
func (l *Limiter) Middleware(keyFunc func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow(keyFunc(r)) {
				http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Cleanup removes limiters whose last use is older than maxAge, returning
// how many were dropped.
func (l *Limiter) Cleanup(maxAge timespan.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clk.Now()
	dropped := 0
	for key, e := range l.entries {
		if maxAge.Less(now.Sub(e.lastSeen)) {
			delete(l.entries, key)
			dropped++
		}
	}
	return dropped
}

// Len returns the number of tracked keys.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// IPKeyFunc extracts the IP address from the request as the rate limit key
func IPKeyFunc(r *http.Request) string {
	// Try X-Forwarded-For header first (for proxies)
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}
	// Strip the port if present
	if idx := strings.LastIndex(r.RemoteAddr, ":"); idx != -1 {
		return r.RemoteAddr[:idx]
	}
	return r.RemoteAddr
}
