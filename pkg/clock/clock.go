// Package clock provides an injectable source of monotonic instants so
// timing-dependent code can be driven deterministically in tests.
package clock

import (
	"sync"

	"github.com/timekit-io/timekit/pkg/timespan"
)

// Clock samples the monotonic clock. Implementations must be safe for
// concurrent use.
type Clock interface {
	Now() timespan.Instant
}

type systemClock struct{}

func (systemClock) Now() timespan.Instant {
	return timespan.Now()
}

// System returns the process-wide monotonic clock.
func System() Clock {
	return systemClock{}
}

// Fake is a manually advanced Clock for tests. It starts at a real sample
// and only moves when told to.
type Fake struct {
	mu  sync.Mutex
	now timespan.Instant
}

// NewFake returns a Fake pinned to the current monotonic reading.
func NewFake() *Fake {
	return &Fake{now: timespan.Now()}
}

// Now returns the fake's current instant.
func (f *Fake) Now() timespan.Instant {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Advance moves the fake clock by d. Negative durations move it back, which
// no real monotonic clock does; tests use that to exercise ordering edges.
func (f *Fake) Advance(d timespan.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}
