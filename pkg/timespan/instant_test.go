package timespan

import (
	"testing"
	"time"
)

func TestNowMonotonic(t *testing.T) {
	a := Now()
	b := Now()
	if b.Before(a) {
		t.Error("monotonic clock went backwards")
	}
	if d := b.Sub(a); d.IsNegative() {
		t.Errorf("later - earlier is negative: %v", d)
	}
}

func TestElapsed(t *testing.T) {
	start := Now()
	time.Sleep(10 * time.Millisecond)
	elapsed := start.Elapsed()
	if elapsed.IsNegative() || elapsed.IsZero() {
		t.Errorf("elapsed = %v", elapsed)
	}
	if elapsed.Less(Milliseconds(5)) {
		t.Errorf("elapsed %v shorter than the sleep", elapsed)
	}
}

func TestSubAntisymmetric(t *testing.T) {
	a := Now()
	b := a.Add(Milliseconds(1500))

	d := b.Sub(a)
	if d != Milliseconds(1500) {
		t.Errorf("b - a = %v", d)
	}
	if got := a.Sub(b); got != d.Neg() {
		t.Errorf("a - b = %v, want %v", got, d.Neg())
	}
	if got := a.Sub(a); got != Zero {
		t.Errorf("a - a = %v", got)
	}
}

func TestAddSignDispatch(t *testing.T) {
	i := Now()

	if got := i.Add(Zero); got != i {
		t.Error("adding zero must return the instant unchanged")
	}

	forward := i.Add(Seconds(2))
	if !forward.After(i) {
		t.Error("adding a positive duration must advance the instant")
	}
	if d := forward.Sub(i); d != Seconds(2) {
		t.Errorf("advance distance = %v", d)
	}

	back := i.Add(Seconds(-2))
	if !back.Before(i) {
		t.Error("adding a negative duration must move the instant back")
	}
	if d := i.Sub(back); d != Seconds(2) {
		t.Errorf("retreat distance = %v", d)
	}
}

func TestCheckedSubMirrorsAdd(t *testing.T) {
	i := Now()

	fromSub, ok := i.CheckedSub(Seconds(3))
	if !ok {
		t.Fatal("CheckedSub failed")
	}
	fromAdd, ok := i.CheckedAdd(Seconds(-3))
	if !ok {
		t.Fatal("CheckedAdd failed")
	}
	if fromSub != fromAdd {
		t.Error("subtracting d must equal adding -d")
	}

	same, ok := i.CheckedSub(Zero)
	if !ok || same != i {
		t.Error("subtracting zero must return the instant unchanged")
	}
}

func TestCheckedArithmeticOverflow(t *testing.T) {
	i := Now()
	if _, ok := i.CheckedAdd(Max); ok {
		t.Error("advancing by Max must overflow the clock sample")
	}
	if _, ok := i.CheckedSub(Max); ok {
		t.Error("retreating by Max must overflow the clock sample")
	}
	if _, ok := i.CheckedAdd(Min); ok {
		t.Error("advancing by Min must overflow the clock sample")
	}
}

func TestMeasure(t *testing.T) {
	d := Measure(func() { time.Sleep(5 * time.Millisecond) })
	if d.IsNegative() || d.IsZero() {
		t.Errorf("Measure = %v", d)
	}
}
