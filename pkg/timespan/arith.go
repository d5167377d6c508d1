package timespan

import "math"

// Each arithmetic operation is implemented once as a fallible core yielding
// one of these outcomes. The public Add/Checked/Saturating entry points are
// thin layers over the core: abort, report absence, or clamp.
type arithOutcome int

const (
	arithOK arithOutcome = iota
	arithOverflowPos
	arithOverflowNeg
	arithDivByZero
)

func addInt64(a, b int64) (int64, bool) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, false
	}
	return sum, true
}

func subInt64(a, b int64) (int64, bool) {
	diff := a - b
	if (b < 0 && diff < a) || (b > 0 && diff > a) {
		return 0, false
	}
	return diff, true
}

func mulInt64(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	if (a == math.MinInt64 && b == -1) || (b == math.MinInt64 && a == -1) {
		return 0, false
	}
	product := a * b
	if product/b != a {
		return 0, false
	}
	return product, true
}

// addCore computes d + rhs. Nanoseconds are summed first and at most one
// whole second is carried or borrowed; only the whole-second addition can
// overflow. The overflow direction follows the sign of the left operand's
// whole seconds, which is the side that pushed past the bound.
func addCore(d, rhs Duration) (Duration, arithOutcome) {
	seconds, ok := addInt64(d.seconds, rhs.seconds)
	if !ok {
		if d.seconds > 0 {
			return Duration{}, arithOverflowPos
		}
		return Duration{}, arithOverflowNeg
	}
	nanoseconds := d.nanoseconds + rhs.nanoseconds
	if nanoseconds >= nanosPerSecond || (seconds < 0 && nanoseconds > 0) {
		nanoseconds -= nanosPerSecond
		if seconds == math.MaxInt64 {
			return Duration{}, arithOverflowPos
		}
		seconds++
	} else if nanoseconds <= -nanosPerSecond || (seconds > 0 && nanoseconds < 0) {
		nanoseconds += nanosPerSecond
		if seconds == math.MinInt64 {
			return Duration{}, arithOverflowNeg
		}
		seconds--
	}
	return Duration{seconds, nanoseconds}, arithOK
}

func subCore(d, rhs Duration) (Duration, arithOutcome) {
	seconds, ok := subInt64(d.seconds, rhs.seconds)
	if !ok {
		if d.seconds > 0 {
			return Duration{}, arithOverflowPos
		}
		return Duration{}, arithOverflowNeg
	}
	nanoseconds := d.nanoseconds - rhs.nanoseconds
	if nanoseconds >= nanosPerSecond || (seconds < 0 && nanoseconds > 0) {
		nanoseconds -= nanosPerSecond
		if seconds == math.MaxInt64 {
			return Duration{}, arithOverflowPos
		}
		seconds++
	} else if nanoseconds <= -nanosPerSecond || (seconds > 0 && nanoseconds < 0) {
		nanoseconds += nanosPerSecond
		if seconds == math.MinInt64 {
			return Duration{}, arithOverflowNeg
		}
		seconds--
	}
	return Duration{seconds, nanoseconds}, arithOK
}

// mulCore computes d * rhs. The nanosecond product is widened to 64 bits so
// it cannot itself overflow; extra whole seconds spill out of it and are
// added to the scaled whole-second part, which is the only step that can
// overflow.
func mulCore(d Duration, rhs int32) (Duration, arithOutcome) {
	totalNanos := int64(d.nanoseconds) * int64(rhs)
	extraSeconds := totalNanos / nanosPerSecond
	nanoseconds := int32(totalNanos % nanosPerSecond)

	overflowDir := func() arithOutcome {
		if (d.seconds > 0) == (rhs > 0) {
			return arithOverflowPos
		}
		return arithOverflowNeg
	}

	seconds, ok := mulInt64(d.seconds, int64(rhs))
	if !ok {
		return Duration{}, overflowDir()
	}
	seconds, ok = addInt64(seconds, extraSeconds)
	if !ok {
		return Duration{}, overflowDir()
	}
	return Duration{seconds, nanoseconds}, arithOK
}

// divCore computes d / rhs with truncation toward zero. The whole-second
// remainder is folded into the nanosecond division scaled by 1e9; since
// |remainder| < |rhs| <= 2^31 that product stays within int64. Division by a
// nonzero divisor cannot overflow except for MinInt64 / -1.
func divCore(d Duration, rhs int32) (Duration, arithOutcome) {
	if rhs == 0 {
		return Duration{}, arithDivByZero
	}
	if d.seconds == math.MinInt64 && rhs == -1 {
		return Duration{}, arithOverflowPos
	}
	seconds := d.seconds / int64(rhs)
	carry := d.seconds - seconds*int64(rhs)
	extraNanos := carry * nanosPerSecond / int64(rhs)
	nanoseconds := d.nanoseconds/rhs + int32(extraNanos)
	return Duration{seconds, nanoseconds}, arithOK
}

// Add returns d + rhs, panicking if the result overflows. Use CheckedAdd or
// SaturatingAdd to avoid the panic.
func (d Duration) Add(rhs Duration) Duration {
	out, outcome := addCore(d, rhs)
	if outcome != arithOK {
		panic("timespan: overflow when adding durations")
	}
	return out
}

// Sub returns d - rhs, panicking if the result overflows.
func (d Duration) Sub(rhs Duration) Duration {
	out, outcome := subCore(d, rhs)
	if outcome != arithOK {
		panic("timespan: overflow when subtracting durations")
	}
	return out
}

// Mul returns d * rhs, panicking if the result overflows.
func (d Duration) Mul(rhs int32) Duration {
	out, outcome := mulCore(d, rhs)
	if outcome != arithOK {
		panic("timespan: overflow when multiplying duration")
	}
	return out
}

// Div returns d / rhs truncated toward zero, panicking if rhs is zero or the
// result overflows.
func (d Duration) Div(rhs int32) Duration {
	out, outcome := divCore(d, rhs)
	switch outcome {
	case arithDivByZero:
		panic("timespan: duration division by zero")
	case arithOverflowPos, arithOverflowNeg:
		panic("timespan: overflow when dividing duration")
	}
	return out
}

// CheckedAdd returns d + rhs and true, or Zero and false on overflow.
func (d Duration) CheckedAdd(rhs Duration) (Duration, bool) {
	out, outcome := addCore(d, rhs)
	return out, outcome == arithOK
}

// CheckedSub returns d - rhs and true, or Zero and false on overflow.
func (d Duration) CheckedSub(rhs Duration) (Duration, bool) {
	out, outcome := subCore(d, rhs)
	return out, outcome == arithOK
}

// CheckedMul returns d * rhs and true, or Zero and false on overflow.
func (d Duration) CheckedMul(rhs int32) (Duration, bool) {
	out, outcome := mulCore(d, rhs)
	return out, outcome == arithOK
}

// CheckedDiv returns d / rhs and true, or Zero and false if rhs is zero or
// the result overflows.
func (d Duration) CheckedDiv(rhs int32) (Duration, bool) {
	out, outcome := divCore(d, rhs)
	return out, outcome == arithOK
}

func saturate(outcome arithOutcome) Duration {
	if outcome == arithOverflowPos {
		return Max
	}
	return Min
}

// SaturatingAdd returns d + rhs, clamping to Max or Min on overflow.
func (d Duration) SaturatingAdd(rhs Duration) Duration {
	out, outcome := addCore(d, rhs)
	if outcome != arithOK {
		return saturate(outcome)
	}
	return out
}

// SaturatingSub returns d - rhs, clamping to Max or Min on overflow.
func (d Duration) SaturatingSub(rhs Duration) Duration {
	out, outcome := subCore(d, rhs)
	if outcome != arithOK {
		return saturate(outcome)
	}
	return out
}

// SaturatingMul returns d * rhs, clamping to Max or Min on overflow.
func (d Duration) SaturatingMul(rhs int32) Duration {
	out, outcome := mulCore(d, rhs)
	if outcome != arithOK {
		return saturate(outcome)
	}
	return out
}
