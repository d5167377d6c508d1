package timespan

import (
	"math"
	_ "unsafe" // for go:linkname
)

//go:linkname nanotime runtime.nanotime
func nanotime() int64

// Instant is an opaque reading of the process monotonic clock. Instants are
// only meaningful relative to other Instants from the same process; they
// carry no wall-clock information. The clock read is safe for concurrent
// use.
type Instant struct {
	ns int64
}

// Now samples the process monotonic clock.
func Now() Instant {
	return Instant{nanotime()}
}

// Elapsed returns the duration since the instant was sampled.
func (i Instant) Elapsed() Duration {
	return Now().Sub(i)
}

// Before reports whether i precedes other.
func (i Instant) Before(other Instant) bool {
	return i.ns < other.ns
}

// After reports whether i follows other.
func (i Instant) After(other Instant) bool {
	return i.ns > other.ns
}

// Sub returns the signed duration between two instants: non-negative when i
// is at or after other, negative otherwise. The magnitude is computed on the
// unsigned difference of the raw samples so the subtraction itself cannot
// underflow; it panics only if that magnitude cannot be represented as a
// Duration, which realistic clock ranges never produce.
func (i Instant) Sub(other Instant) Duration {
	switch {
	case i.ns == other.ns:
		return Zero
	case i.ns > other.ns:
		return fromUnsignedNanos(uint64(i.ns) - uint64(other.ns))
	default:
		return fromUnsignedNanos(uint64(other.ns) - uint64(i.ns)).Neg()
	}
}

func fromUnsignedNanos(ns uint64) Duration {
	if ns > math.MaxInt64 {
		panic("timespan: instant difference overflows duration")
	}
	return Nanoseconds(int64(ns))
}

// Add returns the instant shifted by d, panicking if the underlying clock
// sample would overflow its representable range.
func (i Instant) Add(d Duration) Instant {
	out, ok := i.CheckedAdd(d)
	if !ok {
		panic("timespan: overflow when adding duration to instant")
	}
	return out
}

// CheckedAdd returns the instant shifted by d. A zero duration returns the
// instant unchanged; a positive duration advances the clock sample by the
// magnitude and a negative one moves it back. Reports false if the shifted
// sample leaves the representable range.
func (i Instant) CheckedAdd(d Duration) (Instant, bool) {
	switch {
	case d.IsZero():
		return i, true
	case d.IsPositive():
		return i.shift(d.absUnsigned(), true)
	default:
		return i.shift(d.absUnsigned(), false)
	}
}

// CheckedSub is CheckedAdd with the sign dispatch mirrored: a positive
// duration moves the sample back, a negative one advances it.
func (i Instant) CheckedSub(d Duration) (Instant, bool) {
	switch {
	case d.IsZero():
		return i, true
	case d.IsPositive():
		return i.shift(d.absUnsigned(), false)
	default:
		return i.shift(d.absUnsigned(), true)
	}
}

// shift moves the raw sample by an unsigned magnitude in the given
// direction, reporting false on overflow of the sample's int64 range.
func (i Instant) shift(mag Unsigned, forward bool) (Instant, bool) {
	if mag.Seconds > math.MaxInt64/nanosPerSecond {
		return Instant{}, false
	}
	delta, ok := addInt64(int64(mag.Seconds)*nanosPerSecond, int64(mag.Nanoseconds))
	if !ok {
		return Instant{}, false
	}
	var ns int64
	if forward {
		ns, ok = addInt64(i.ns, delta)
	} else {
		ns, ok = subInt64(i.ns, delta)
	}
	if !ok {
		return Instant{}, false
	}
	return Instant{ns}, true
}

// Measure runs fn and returns how long it took on the monotonic clock.
func Measure(fn func()) Duration {
	start := Now()
	fn()
	return Now().Sub(start)
}
