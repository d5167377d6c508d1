package clock

import (
	"testing"

	"github.com/timekit-io/timekit/pkg/timespan"
)

func TestSystemAdvances(t *testing.T) {
	c := System()
	a := c.Now()
	b := c.Now()
	if b.Before(a) {
		t.Error("system clock went backwards")
	}
}

func TestFakeOnlyMovesOnAdvance(t *testing.T) {
	f := NewFake()
	a := f.Now()
	if f.Now() != a {
		t.Error("fake clock moved without Advance")
	}

	f.Advance(timespan.Seconds(5))
	if d := f.Now().Sub(a); d != timespan.Seconds(5) {
		t.Errorf("advanced by %v, want 5s", d)
	}

	f.Advance(timespan.Seconds(-2))
	if d := f.Now().Sub(a); d != timespan.Seconds(3) {
		t.Errorf("after rewind at %v, want 3s", d)
	}
}
