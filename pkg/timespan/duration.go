// Package timespan provides a signed, nanosecond-precision duration value
// type and a monotonic instant type with safe arithmetic between them.
//
// A Duration is stored as whole seconds plus a sub-second nanosecond
// remainder. The two fields never disagree in sign and the remainder's
// magnitude is always below one second; every constructor and arithmetic
// operation re-establishes that form before returning.
package timespan

import "math"

const nanosPerSecond = 1_000_000_000

// Duration is an immutable signed span of time with nanosecond precision.
// The zero value is a zero-length duration and is ready to use.
type Duration struct {
	seconds     int64
	nanoseconds int32
}

// Unit durations and representational bounds.
var (
	Zero        = Duration{}
	Nanosecond  = Nanoseconds(1)
	Microsecond = Microseconds(1)
	Millisecond = Milliseconds(1)
	Second      = Seconds(1)
	Minute      = Minutes(1)
	Hour        = Hours(1)
	Day         = Days(1)
	Week        = Weeks(1)

	// Min and Max are the most negative and most positive representable
	// durations, with the sub-second field at its bound.
	Min = Duration{math.MinInt64, -(nanosPerSecond - 1)}
	Max = Duration{math.MaxInt64, nanosPerSecond - 1}
)

// New returns a Duration from whole seconds and additional nanoseconds.
// The nanoseconds argument may have any magnitude and either sign; whole
// seconds are carried and the sign mismatch between the two components is
// resolved so the result is in normal form.
func New(seconds, nanoseconds int64) Duration {
	seconds, ok := addInt64(seconds, nanoseconds/nanosPerSecond)
	if !ok {
		panic("timespan: overflow constructing duration")
	}
	nanoseconds %= nanosPerSecond
	if seconds > 0 && nanoseconds < 0 {
		seconds--
		nanoseconds += nanosPerSecond
	} else if seconds < 0 && nanoseconds > 0 {
		seconds++
		nanoseconds -= nanosPerSecond
	}
	return Duration{seconds, int32(nanoseconds)}
}

// Weeks returns a Duration of the given number of weeks.
func Weeks(weeks int64) Duration {
	return Seconds(weeks * 604_800)
}

// Days returns a Duration of the given number of days.
func Days(days int64) Duration {
	return Seconds(days * 86_400)
}

// Hours returns a Duration of the given number of hours.
func Hours(hours int64) Duration {
	return Seconds(hours * 3_600)
}

// Minutes returns a Duration of the given number of minutes.
func Minutes(minutes int64) Duration {
	return Seconds(minutes * 60)
}

// Seconds returns a Duration of the given number of whole seconds.
func Seconds(seconds int64) Duration {
	return Duration{seconds, 0}
}

// SecondsFloat returns a Duration from a fractional second count. The
// conversion is best-effort: the value is truncated toward zero to whole
// seconds and the remainder is rounded through IEEE-754 double arithmetic,
// so it is not bit-exact across floating widths.
func SecondsFloat(seconds float64) Duration {
	return Duration{int64(seconds), int32(math.Mod(seconds, 1) * nanosPerSecond)}
}

// SecondsFloat32 is SecondsFloat for 32-bit floating input. It shares the
// same best-effort contract and may round differently from SecondsFloat.
func SecondsFloat32(seconds float32) Duration {
	frac := seconds - float32(int64(seconds))
	return Duration{int64(seconds), int32(frac * nanosPerSecond)}
}

// Milliseconds returns a Duration of the given number of milliseconds.
func Milliseconds(milliseconds int64) Duration {
	return Duration{milliseconds / 1_000, int32((milliseconds % 1_000) * 1_000_000)}
}

// Microseconds returns a Duration of the given number of microseconds.
func Microseconds(microseconds int64) Duration {
	return Duration{microseconds / 1_000_000, int32((microseconds % 1_000_000) * 1_000)}
}

// Nanoseconds returns a Duration of the given number of nanoseconds.
func Nanoseconds(nanoseconds int64) Duration {
	return Duration{nanoseconds / nanosPerSecond, int32(nanoseconds % nanosPerSecond)}
}

// IsZero reports whether the duration is exactly zero.
func (d Duration) IsZero() bool {
	return d.seconds == 0 && d.nanoseconds == 0
}

// IsNegative reports whether the duration is strictly negative.
func (d Duration) IsNegative() bool {
	return d.seconds < 0 || d.nanoseconds < 0
}

// IsPositive reports whether the duration is strictly positive.
func (d Duration) IsPositive() bool {
	return d.seconds > 0 || d.nanoseconds > 0
}

// Abs returns the absolute value of the duration. The whole-second part
// saturates at Max's seconds when it equals math.MinInt64, since that
// magnitude has no positive 64-bit counterpart; the sub-second part is exact.
func (d Duration) Abs() Duration {
	seconds := d.seconds
	switch {
	case seconds == math.MinInt64:
		seconds = math.MaxInt64
	case seconds < 0:
		seconds = -seconds
	}
	nanoseconds := d.nanoseconds
	if nanoseconds < 0 {
		nanoseconds = -nanoseconds
	}
	return Duration{seconds, nanoseconds}
}

// Neg returns the negation of the duration, saturating at Max when the
// whole-second part is math.MinInt64.
func (d Duration) Neg() Duration {
	if d.seconds == math.MinInt64 {
		return Max
	}
	return Duration{-d.seconds, -d.nanoseconds}
}

// Cmp compares two durations, returning -1, 0, or +1.
func (d Duration) Cmp(rhs Duration) int {
	switch {
	case d.seconds < rhs.seconds:
		return -1
	case d.seconds > rhs.seconds:
		return 1
	case d.nanoseconds < rhs.nanoseconds:
		return -1
	case d.nanoseconds > rhs.nanoseconds:
		return 1
	}
	return 0
}

// Less reports whether d is shorter than rhs.
func (d Duration) Less(rhs Duration) bool {
	return d.Cmp(rhs) < 0
}

// Sum folds the given durations left to right with Add, panicking on
// overflow. An empty argument list sums to Zero.
func Sum(ds ...Duration) Duration {
	total := Zero
	for _, d := range ds {
		total = total.Add(d)
	}
	return total
}
