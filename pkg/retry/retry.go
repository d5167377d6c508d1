// Package retry executes functions with exponential backoff.
package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/timekit-io/timekit/pkg/timespan"
)

// Config holds retry configuration
type Config struct {
	MaxRetries     int               // Maximum number of retry attempts
	InitialBackoff timespan.Duration // Initial backoff duration
	MaxBackoff     timespan.Duration // Maximum backoff duration
	Multiplier     int32             // Backoff multiplier (exponential)

	// Sleep is called between attempts; tests inject a fake. Nil means a
	// real timer honoring ctx cancellation.
	Sleep func(ctx context.Context, d timespan.Duration) error
}

// DefaultConfig returns sensible defaults for retries
func DefaultConfig() Config {
	return Config{
		MaxRetries:     3,
		InitialBackoff: timespan.Seconds(1),
		MaxBackoff:     timespan.Seconds(30),
		Multiplier:     2,
	}
}

func sleepTimer(ctx context.Context, d timespan.Duration) error {
	sd, err := d.Std()
	if err != nil {
		// A backoff beyond time.Duration's range behaves like its cap.
		sd = 1<<63 - 1
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(sd):
		return nil
	}
}

// Do executes fn with exponential backoff retries
func Do(ctx context.Context, config Config, fn func() error) error {
	sleep := config.Sleep
	if sleep == nil {
		sleep = sleepTimer
	}

	var lastErr error
	backoff := config.InitialBackoff

	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return fmt.Errorf("retry cancelled: %w", ctx.Err())
		default:
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		// Don't sleep after the last attempt
		if attempt == config.MaxRetries {
			break
		}

		if err := sleep(ctx, backoff); err != nil {
			return fmt.Errorf("retry cancelled: %w", err)
		}

		// Grow the backoff, clamping at the configured ceiling. Saturating
		// multiplication keeps a misconfigured multiplier from wrapping.
		backoff = backoff.SaturatingMul(config.Multiplier)
		if config.MaxBackoff.Less(backoff) {
			backoff = config.MaxBackoff
		}
	}

	return fmt.Errorf("max retries (%d) exceeded: %w", config.MaxRetries, lastErr)
}
