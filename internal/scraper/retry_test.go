package scraper

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestExponentialRetryPolicy(t *testing.T) {
	t.Run("zero value uses defaults", func(t *testing.T) {
		var p ExponentialRetryPolicy
		require.Equal(t, DefaultMaxAttempts, p.MaxAttempts())
		require.Equal(t, time.Second, p.Backoff(0))
	})

	t.Run("backoff doubles per attempt", func(t *testing.T) {
		p := ExponentialRetryPolicy{Unit: time.Second}
		require.Equal(t, 1*time.Second, p.Backoff(0))
		require.Equal(t, 2*time.Second, p.Backoff(1))
		require.Equal(t, 4*time.Second, p.Backoff(2))
	})

	t.Run("negative attempt clamps to zero", func(t *testing.T) {
		p := ExponentialRetryPolicy{Unit: time.Second}
		require.Equal(t, time.Second, p.Backoff(-3))
	})

	t.Run("retries until the attempt budget", func(t *testing.T) {
		p := ExponentialRetryPolicy{Attempts: 3}
		err := errors.New("boom")
		require.True(t, p.ShouldRetry(err, 0))
		require.True(t, p.ShouldRetry(err, 1))
		require.False(t, p.ShouldRetry(err, 2))
	})

	t.Run("nil error never retries", func(t *testing.T) {
		p := ExponentialRetryPolicy{Attempts: 3}
		require.False(t, p.ShouldRetry(nil, 0))
	})

	t.Run("cancellation is not retried", func(t *testing.T) {
		p := ExponentialRetryPolicy{Attempts: 3}
		require.False(t, p.ShouldRetry(context.Canceled, 0))
		require.False(t, p.ShouldRetry(fmt.Errorf("visit: %w", context.Canceled), 0))
	})

	t.Run("timeouts are retried", func(t *testing.T) {
		p := ExponentialRetryPolicy{Attempts: 3}
		require.True(t, p.ShouldRetry(context.DeadlineExceeded, 0))
	})
}
