// Package timing measures how long operations take against an injectable
// monotonic clock.
package timing

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/timekit-io/timekit/pkg/clock"
	"github.com/timekit-io/timekit/pkg/timespan"
)

// Timing records start/completion instants only
type Timing struct {
	clk       clock.Clock
	started   timespan.Instant
	completed timespan.Instant
	done      bool
}

// New creates a timing started at the clock's current instant
func New(clk clock.Clock) *Timing {
	if clk == nil {
		clk = clock.System()
	}
	return &Timing{clk: clk, started: clk.Now()}
}

// Complete records the completion instant. Calling it again has no effect.
func (t *Timing) Complete() {
	if !t.done {
		t.completed = t.clk.Now()
		t.done = true
	}
}

// Duration returns the elapsed span: completion minus start once completed,
// otherwise the running distance from start to now.
func (t *Timing) Duration() timespan.Duration {
	if !t.done {
		return t.clk.Now().Sub(t.started)
	}
	return t.completed.Sub(t.started)
}

// Stopwatch accumulates laps against a clock.
type Stopwatch struct {
	mu       sync.Mutex
	clk      clock.Clock
	lapStart timespan.Instant
	laps     []timespan.Duration
}

// NewStopwatch creates a running stopwatch.
func NewStopwatch(clk clock.Clock) *Stopwatch {
	if clk == nil {
		clk = clock.System()
	}
	return &Stopwatch{clk: clk, lapStart: clk.Now()}
}

// Lap records the span since the previous lap (or start) and begins the next.
func (s *Stopwatch) Lap() timespan.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clk.Now()
	lap := now.Sub(s.lapStart)
	s.lapStart = now
	s.laps = append(s.laps, lap)
	return lap
}

// Laps returns a copy of the recorded laps.
func (s *Stopwatch) Laps() []timespan.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]timespan.Duration, len(s.laps))
	copy(out, s.laps)
	return out
}

// Total returns the sum of recorded laps. Panics only if the laps overflow
// the duration range, which no real stopwatch reaches.
func (s *Stopwatch) Total() timespan.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return timespan.Sum(s.laps...)
}

// ObserveInto completes the timing and records its seconds into a prometheus
// observer (histogram or summary). Negative spans are not observed.
func (t *Timing) ObserveInto(obs prometheus.Observer) timespan.Duration {
	t.Complete()
	d := t.Duration()
	if !d.IsNegative() {
		obs.Observe(d.SecondsFloat())
	}
	return d
}
