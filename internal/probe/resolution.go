// Package probe measures observable properties of the process clocks.
package probe

import (
	"time"

	"github.com/timekit-io/timekit/pkg/timespan"
)

// Resolution describes the observed granularity of the monotonic clock.
type Resolution struct {
	Samples  int               `json:"samples" yaml:"samples"`
	MinStep  timespan.Duration `json:"-" yaml:"-"`
	MeanStep timespan.Duration `json:"-" yaml:"-"`

	// Rendered fields for the CLI encoders.
	MinStepNanos  int64 `json:"min_step_ns" yaml:"min_step_ns"`
	MeanStepNanos int64 `json:"mean_step_ns" yaml:"mean_step_ns"`
}

// MeasureResolution samples the monotonic clock until it has observed the
// requested number of distinct ticks and reports the smallest and average
// positive step. The busy loop is bounded, so a coarse clock yields fewer
// effective samples rather than a hang.
func MeasureResolution(samples int) Resolution {
	if samples <= 0 {
		samples = 100
	}

	minStep := timespan.Max
	total := timespan.Zero
	seen := 0

	last := timespan.Now()
	for spins := 0; seen < samples && spins < samples*100_000; spins++ {
		now := timespan.Now()
		step := now.Sub(last)
		if step.IsPositive() {
			if step.Less(minStep) {
				minStep = step
			}
			total = total.SaturatingAdd(step)
			seen++
			last = now
		}
	}

	res := Resolution{Samples: seen}
	if seen > 0 {
		res.MinStep = minStep
		res.MeanStep = total.Div(int32(seen))
	}
	res.MinStepNanos = res.MinStep.WholeNanoseconds()
	res.MeanStepNanos = res.MeanStep.WholeNanoseconds()
	return res
}

// Drift reports wall-clock elapsed minus monotonic elapsed across the same
// interval. The two clocks tick independently; NTP slew and suspend show up
// here.
type Drift struct {
	wallStart time.Time
	monoStart timespan.Instant
}

// NewDrift anchors a drift measurement at the current readings of both
// clocks. Round(0) strips the monotonic part so the wall side really is the
// wall clock.
func NewDrift() *Drift {
	return &Drift{wallStart: time.Now().Round(0), monoStart: timespan.Now()}
}

// Measure returns wall elapsed minus monotonic elapsed since the anchor.
func (d *Drift) Measure() timespan.Duration {
	wall := timespan.FromStd(time.Now().Round(0).Sub(d.wallStart))
	mono := d.monoStart.Elapsed()
	return wall.SaturatingSub(mono)
}
