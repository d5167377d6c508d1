package retry

import (
	"context"
	"errors"
	"testing"

	"github.com/timekit-io/timekit/pkg/timespan"
)

func fakeSleep(slept *[]timespan.Duration) func(context.Context, timespan.Duration) error {
	return func(_ context.Context, d timespan.Duration) error {
		*slept = append(*slept, d)
		return nil
	}
}

func TestSucceedsFirstTry(t *testing.T) {
	var slept []timespan.Duration
	cfg := DefaultConfig()
	cfg.Sleep = fakeSleep(&slept)

	calls := 0
	err := Do(context.Background(), cfg, func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if calls != 1 || len(slept) != 0 {
		t.Errorf("calls=%d slept=%v", calls, slept)
	}
}

func TestBackoffGrowsAndClamps(t *testing.T) {
	var slept []timespan.Duration
	cfg := Config{
		MaxRetries:     4,
		InitialBackoff: timespan.Seconds(1),
		MaxBackoff:     timespan.Seconds(4),
		Multiplier:     2,
		Sleep:          fakeSleep(&slept),
	}

	boom := errors.New("boom")
	err := Do(context.Background(), cfg, func() error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}

	want := []timespan.Duration{
		timespan.Seconds(1), timespan.Seconds(2), timespan.Seconds(4), timespan.Seconds(4),
	}
	if len(slept) != len(want) {
		t.Fatalf("slept %v, want %v", slept, want)
	}
	for i := range want {
		if slept[i] != want[i] {
			t.Errorf("sleep %d = %v, want %v", i, slept[i], want[i])
		}
	}
}

func TestEventualSuccess(t *testing.T) {
	var slept []timespan.Duration
	cfg := DefaultConfig()
	cfg.Sleep = fakeSleep(&slept)

	calls := 0
	err := Do(context.Background(), cfg, func() error {
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if calls != 3 || len(slept) != 2 {
		t.Errorf("calls=%d slept=%v", calls, slept)
	}
}

func TestContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := DefaultConfig()
	cfg.Sleep = func(ctx context.Context, _ timespan.Duration) error { return ctx.Err() }

	err := Do(ctx, cfg, func() error { return errors.New("boom") })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v", err)
	}
}
