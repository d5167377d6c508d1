package timing

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/timekit-io/timekit/pkg/clock"
	"github.com/timekit-io/timekit/pkg/timespan"
)

func TestTimingWithFakeClock(t *testing.T) {
	fake := clock.NewFake()
	tm := New(fake)

	fake.Advance(timespan.Milliseconds(250))
	if got := tm.Duration(); got != timespan.Milliseconds(250) {
		t.Errorf("running duration = %v", got)
	}

	fake.Advance(timespan.Milliseconds(250))
	tm.Complete()

	fake.Advance(timespan.Seconds(10)) // must not change a completed timing
	if got := tm.Duration(); got != timespan.Milliseconds(500) {
		t.Errorf("completed duration = %v", got)
	}
}

func TestCompleteIsIdempotent(t *testing.T) {
	fake := clock.NewFake()
	tm := New(fake)
	fake.Advance(timespan.Seconds(1))
	tm.Complete()
	fake.Advance(timespan.Seconds(1))
	tm.Complete()
	if got := tm.Duration(); got != timespan.Seconds(1) {
		t.Errorf("duration = %v", got)
	}
}

func TestStopwatchLaps(t *testing.T) {
	fake := clock.NewFake()
	sw := NewStopwatch(fake)

	fake.Advance(timespan.Seconds(1))
	if lap := sw.Lap(); lap != timespan.Seconds(1) {
		t.Errorf("first lap = %v", lap)
	}

	fake.Advance(timespan.Milliseconds(500))
	if lap := sw.Lap(); lap != timespan.Milliseconds(500) {
		t.Errorf("second lap = %v", lap)
	}

	if total := sw.Total(); total != timespan.Milliseconds(1500) {
		t.Errorf("total = %v", total)
	}
	if laps := sw.Laps(); len(laps) != 2 {
		t.Errorf("laps = %v", laps)
	}
}

func TestObserveInto(t *testing.T) {
	fake := clock.NewFake()
	hist := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name: "test_op_duration_seconds",
		Help: "test",
	})

	tm := New(fake)
	fake.Advance(timespan.Milliseconds(1500))
	if got := tm.ObserveInto(hist); got != timespan.Milliseconds(1500) {
		t.Errorf("observed duration = %v", got)
	}

	var m dto.Metric
	if err := hist.Write(&m); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	if m.GetHistogram().GetSampleCount() != 1 {
		t.Errorf("sample count = %d", m.GetHistogram().GetSampleCount())
	}
	if got := m.GetHistogram().GetSampleSum(); got != 1.5 {
		t.Errorf("sample sum = %v", got)
	}
}
