package scraper

import (
	"context"
	"errors"
	"time"
)

const (
	// DefaultMaxAttempts is the total number of fetch attempts per URL,
	// including the first.
	DefaultMaxAttempts = 3
	// DefaultBackoffUnit scales the exponential backoff between attempts.
	DefaultBackoffUnit = time.Second
)

// ExponentialRetryPolicy retries with a doubling backoff: the sleep before
// re-attempt n+1 is Unit << n, so with the one second default the waits are
// 1s, 2s, 4s, and so on. The zero value uses DefaultMaxAttempts and
// DefaultBackoffUnit.
type ExponentialRetryPolicy struct {
	Attempts int
	Unit     time.Duration
}

// MaxAttempts returns the total attempt budget.
func (p ExponentialRetryPolicy) MaxAttempts() int {
	if p.Attempts <= 0 {
		return DefaultMaxAttempts
	}
	return p.Attempts
}

// ShouldRetry reports whether another attempt is allowed after the given
// zero-based attempt failed. Cancellation is never retried.
func (p ExponentialRetryPolicy) ShouldRetry(err error, attempt int) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	return attempt < p.MaxAttempts()-1
}

// Backoff returns the wait before the attempt after the given one.
func (p ExponentialRetryPolicy) Backoff(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	unit := p.Unit
	if unit <= 0 {
		unit = DefaultBackoffUnit
	}
	return unit << attempt
}
