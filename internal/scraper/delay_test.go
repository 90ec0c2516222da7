package scraper

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestUniformDelayPolicy_NextDelay(t *testing.T) {
	t.Run("stays within bounds", func(t *testing.T) {
		p := UniformDelayPolicy{Min: 10 * time.Millisecond, Max: 20 * time.Millisecond}
		for i := 0; i < 200; i++ {
			d := p.NextDelay()
			require.GreaterOrEqual(t, d, 10*time.Millisecond)
			require.LessOrEqual(t, d, 20*time.Millisecond)
		}
	})

	t.Run("zero value uses defaults", func(t *testing.T) {
		var p UniformDelayPolicy
		d := p.NextDelay()
		require.GreaterOrEqual(t, d, DefaultMinDelay)
		require.LessOrEqual(t, d, DefaultMaxDelay)
	})

	t.Run("equal bounds are fixed", func(t *testing.T) {
		p := UniformDelayPolicy{Min: 3 * time.Second, Max: 3 * time.Second}
		require.Equal(t, 3*time.Second, p.NextDelay())
	})

	t.Run("inverted bounds collapse to min", func(t *testing.T) {
		p := UniformDelayPolicy{Min: 5 * time.Second, Max: 2 * time.Second}
		require.Equal(t, 5*time.Second, p.NextDelay())
	})
}

func TestTimerPause_Pause(t *testing.T) {
	t.Run("waits the requested duration", func(t *testing.T) {
		start := time.Now()
		err := TimerPause{}.Pause(context.Background(), 20*time.Millisecond)
		require.NoError(t, err)
		require.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	})

	t.Run("aborts on cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		start := time.Now()
		err := TimerPause{}.Pause(ctx, time.Minute)
		require.ErrorIs(t, err, context.Canceled)
		require.Less(t, time.Since(start), time.Second)
	})

	t.Run("zero duration returns immediately", func(t *testing.T) {
		require.NoError(t, TimerPause{}.Pause(context.Background(), 0))
	})
}
