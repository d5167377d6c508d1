package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/timekit-io/timekit/pkg/clock"
	"github.com/timekit-io/timekit/pkg/timespan"
)

func TestLimiter(t *testing.T) {
	// With a burst of 2 the bucket starts with 2 tokens; each Allow()
	// consumes one.
	limiter := NewLimiter(10, 2, nil) // 10 requests per second, burst of 2

	if !limiter.Allow("test-key") {
		t.Error("First request should be allowed")
	}
	if !limiter.Allow("test-key") {
		t.Error("Second request should be allowed")
	}
	if limiter.Allow("test-key") {
		t.Error("Third request should be rate limited")
	}

	// Wait for token refill (10 req/s = 100ms per token)
	time.Sleep(150 * time.Millisecond)

	if !limiter.Allow("test-key") {
		t.Error("Request after waiting should be allowed")
	}
}

func TestKeysAreIndependent(t *testing.T) {
	limiter := NewLimiter(1, 1, nil)
	if !limiter.Allow("a") {
		t.Error("first key should be allowed")
	}
	if !limiter.Allow("b") {
		t.Error("second key should have its own bucket")
	}
	if limiter.Allow("a") {
		t.Error("first key should be exhausted")
	}
}

func TestCleanup(t *testing.T) {
	fake := clock.NewFake()
	limiter := NewLimiter(10, 2, fake)

	limiter.Allow("stale")
	fake.Advance(timespan.Minutes(10))
	limiter.Allow("fresh")

	if dropped := limiter.Cleanup(timespan.Minutes(5)); dropped != 1 {
		t.Errorf("dropped = %d, want 1", dropped)
	}
	if limiter.Len() != 1 {
		t.Errorf("tracked keys = %d, want 1", limiter.Len())
	}

	// The surviving key is re-created lazily once dropped, never an error.
	if !limiter.Allow("fresh") {
		t.Error("fresh key should still be allowed")
	}
}

func TestMiddleware(t *testing.T) {
	limiter := NewLimiter(10, 2, nil)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	wrapped := limiter.Middleware(func(r *http.Request) string {
		return "test-key"
	})(handler)

	for i, wantStatus := range []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests} {
		req := httptest.NewRequest("GET", "/test", nil)
		rr := httptest.NewRecorder()
		wrapped.ServeHTTP(rr, req)
		if rr.Code != wantStatus {
			t.Errorf("request %d: status %d, want %d", i+1, rr.Code, wantStatus)
		}
	}
}

func TestIPKeyFunc(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	if got := IPKeyFunc(req); got != "10.0.0.1" {
		t.Errorf("key = %q", got)
	}

	req.Header.Set("X-Forwarded-For", "192.168.1.5, 10.0.0.1")
	if got := IPKeyFunc(req); got != "192.168.1.5" {
		t.Errorf("forwarded key = %q", got)
	}
}
