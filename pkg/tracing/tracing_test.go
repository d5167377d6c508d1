package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledProviderIsUsable(t *testing.T) {
	p, err := InitTracer(Config{ServiceName: "timekit-test", Enabled: false})
	require.NoError(t, err)
	defer p.Shutdown(context.Background())

	ctx, span := p.StartSpan(context.Background(), "noop")
	assert.False(t, span.IsRecording())
	span.End()

	// Helpers must not panic on an unrecorded span.
	SetError(ctx, errors.New("ignored"))
}

func TestWithSpanPropagatesError(t *testing.T) {
	p, err := InitTracer(Config{ServiceName: "timekit-test", Enabled: false})
	require.NoError(t, err)
	defer p.Shutdown(context.Background())

	sentinel := errors.New("measurement failed")
	err = p.WithSpan(context.Background(), "measure", func(ctx context.Context) error {
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)

	called := false
	err = p.WithSpan(context.Background(), "measure", func(ctx context.Context) error {
		called = true
		return nil
	})
	assert.NoError(t, err)
	assert.True(t, called)
}
