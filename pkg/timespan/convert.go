package timespan

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrConversionRange is reported when a value's sign or magnitude does not
// fit the conversion target.
var ErrConversionRange = errors.New("timespan: conversion out of range")

// WholeWeeks returns the number of whole weeks, truncated toward zero.
func (d Duration) WholeWeeks() int64 {
	return d.WholeSeconds() / 604_800
}

// WholeDays returns the number of whole days, truncated toward zero.
func (d Duration) WholeDays() int64 {
	return d.WholeSeconds() / 86_400
}

// WholeHours returns the number of whole hours, truncated toward zero.
func (d Duration) WholeHours() int64 {
	return d.WholeSeconds() / 3_600
}

// WholeMinutes returns the number of whole minutes, truncated toward zero.
func (d Duration) WholeMinutes() int64 {
	return d.WholeSeconds() / 60
}

// WholeSeconds returns the number of whole seconds, truncated toward zero.
func (d Duration) WholeSeconds() int64 {
	return d.seconds
}

// SecondsFloat returns the duration as a fractional second count, combining
// both fields through double arithmetic (best effort, lossy for very large
// magnitudes).
func (d Duration) SecondsFloat() float64 {
	return float64(d.seconds) + float64(d.nanoseconds)/nanosPerSecond
}

// SecondsFloat32 is SecondsFloat at 32-bit width.
func (d Duration) SecondsFloat32() float32 {
	return float32(d.seconds) + float32(d.nanoseconds)/nanosPerSecond
}

// WholeMilliseconds returns the total number of milliseconds, combining both
// fields exactly. The result clamps to math.MaxInt64 or math.MinInt64 for
// durations whose millisecond count exceeds the 64-bit range.
func (d Duration) WholeMilliseconds() int64 {
	return d.wholeScaled(1_000, 1_000_000)
}

// WholeMicroseconds returns the total number of microseconds, combining both
// fields exactly, clamping at the 64-bit bounds.
func (d Duration) WholeMicroseconds() int64 {
	return d.wholeScaled(1_000_000, 1_000)
}

// WholeNanoseconds returns the total number of nanoseconds, combining both
// fields exactly, clamping at the 64-bit bounds.
func (d Duration) WholeNanoseconds() int64 {
	return d.wholeScaled(nanosPerSecond, 1)
}

// wholeScaled computes seconds*perSecond + nanoseconds/nanosPerUnit, clamping
// when the widened combination leaves the int64 range.
func (d Duration) wholeScaled(perSecond, nanosPerUnit int64) int64 {
	clamp := func() int64 {
		if d.IsNegative() {
			return math.MinInt64
		}
		return math.MaxInt64
	}
	scaled, ok := mulInt64(d.seconds, perSecond)
	if !ok {
		return clamp()
	}
	total, ok := addInt64(scaled, int64(d.nanoseconds)/nanosPerUnit)
	if !ok {
		return clamp()
	}
	return total
}

// SubsecMilliseconds returns the sub-second part in milliseconds. The sign
// matches the duration's sign and the magnitude is below 1000.
func (d Duration) SubsecMilliseconds() int32 {
	return d.nanoseconds / 1_000_000
}

// SubsecMicroseconds returns the sub-second part in microseconds.
func (d Duration) SubsecMicroseconds() int32 {
	return d.nanoseconds / 1_000
}

// SubsecNanoseconds returns the sub-second part in nanoseconds.
func (d Duration) SubsecNanoseconds() int32 {
	return d.nanoseconds
}

// Unsigned is the non-negative two-field counterpart representation used for
// interoperating with APIs that cannot express negative spans.
type Unsigned struct {
	Seconds     uint64
	Nanoseconds uint32
}

// Unsigned converts the duration to its non-negative counterpart, failing
// with ErrConversionRange if the duration is negative.
func (d Duration) Unsigned() (Unsigned, error) {
	if d.IsNegative() {
		return Unsigned{}, fmt.Errorf("%w: negative duration has no unsigned form", ErrConversionRange)
	}
	return Unsigned{Seconds: uint64(d.seconds), Nanoseconds: uint32(d.nanoseconds)}, nil
}

// FromUnsigned converts a non-negative counterpart value to a Duration,
// failing with ErrConversionRange if the whole-second count exceeds the
// signed 64-bit maximum.
func FromUnsigned(u Unsigned) (Duration, error) {
	if u.Seconds > math.MaxInt64 {
		return Zero, fmt.Errorf("%w: %d seconds exceeds the signed maximum", ErrConversionRange, u.Seconds)
	}
	return New(int64(u.Seconds), int64(u.Nanoseconds)), nil
}

// FromStd converts a standard library duration. The conversion is exact:
// time.Duration's full range fits within Duration.
func FromStd(sd time.Duration) Duration {
	return Nanoseconds(int64(sd))
}

// Std converts the duration to a standard library duration, failing with
// ErrConversionRange when the total nanosecond count leaves the 64-bit
// range time.Duration can hold.
func (d Duration) Std() (time.Duration, error) {
	scaled, ok := mulInt64(d.seconds, nanosPerSecond)
	if !ok {
		return 0, fmt.Errorf("%w: duration exceeds time.Duration range", ErrConversionRange)
	}
	total, ok := addInt64(scaled, int64(d.nanoseconds))
	if !ok {
		return 0, fmt.Errorf("%w: duration exceeds time.Duration range", ErrConversionRange)
	}
	return time.Duration(total), nil
}

// absUnsigned returns the magnitude as the unsigned counterpart, valid for
// any duration including Min.
func (d Duration) absUnsigned() Unsigned {
	var seconds uint64
	if d.seconds >= 0 {
		seconds = uint64(d.seconds)
	} else {
		seconds = uint64(^d.seconds) + 1
	}
	nanoseconds := d.nanoseconds
	if nanoseconds < 0 {
		nanoseconds = -nanoseconds
	}
	return Unsigned{Seconds: seconds, Nanoseconds: uint32(nanoseconds)}
}

// String renders the duration as signed fractional seconds, e.g. "-1.5s".
// The core deliberately provides no richer textual formatting.
func (d Duration) String() string {
	return fmt.Sprintf("%gs", d.SecondsFloat())
}
