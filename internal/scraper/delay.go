package scraper

import (
	"context"
	"crypto/rand"
	"math/big"
	"time"
)

const (
	// DefaultMinDelay is the lower bound of the politeness delay.
	DefaultMinDelay = 2 * time.Second
	// DefaultMaxDelay is the upper bound of the politeness delay.
	DefaultMaxDelay = 5 * time.Second
)

// UniformDelayPolicy draws delays uniformly from [Min, Max]. The zero value
// uses the package defaults.
type UniformDelayPolicy struct {
	Min time.Duration
	Max time.Duration
}

// NextDelay returns the next politeness delay.
func (p UniformDelayPolicy) NextDelay() time.Duration {
	min, max := p.bounds()
	span := max - min
	if span <= 0 {
		return min
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(span)+1))
	if err != nil {
		return min
	}
	return min + time.Duration(n.Int64())
}

func (p UniformDelayPolicy) bounds() (time.Duration, time.Duration) {
	min, max := p.Min, p.Max
	if min <= 0 {
		min = DefaultMinDelay
	}
	if max <= 0 {
		max = DefaultMaxDelay
	}
	if max < min {
		max = min
	}
	return min, max
}

// TimerPause blocks with a timer so that waits abort promptly when the
// context is cancelled.
type TimerPause struct{}

// Pause waits for d or until ctx is done, whichever comes first.
func (TimerPause) Pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
