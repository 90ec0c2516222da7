package scraper

import (
	"context"
	"time"
)

// Classifier decides, before any network traffic, whether a URL should be
// skipped outright. The second return value is the human-readable reason.
type Classifier interface {
	ShouldSkip(rawURL string) (bool, string)
}

// Fetcher retrieves the raw HTML document behind a URL. Implementations own
// their retry behavior; a returned error means the URL is exhausted.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// Extractor pulls readable article content out of fetched HTML.
type Extractor interface {
	Extract(content []byte, rawURL string) (Article, error)
}

// Checkpointer persists records incrementally so an interrupted run can be
// resumed without refetching finished URLs.
type Checkpointer interface {
	// Load returns previously checkpointed records and the set of URLs they
	// cover. A missing or empty checkpoint is not an error.
	Load() (records []Record, processed map[string]struct{}, err error)
	// Append adds one record, flushing to disk at the configured interval.
	Append(rec Record) error
	// Finalize writes the full record set to the output file and removes the
	// checkpoint.
	Finalize() error
}

// Clock abstracts time.Now for deterministic tests.
type Clock interface {
	Now() time.Time
}

// PauseController blocks for a duration, honoring context cancellation.
type PauseController interface {
	Pause(ctx context.Context, d time.Duration) error
}

// DelayPolicy yields the politeness delay inserted between consecutive URLs.
type DelayPolicy interface {
	NextDelay() time.Duration
}

// RetryPolicy governs how fetchers re-attempt transient failures.
type RetryPolicy interface {
	MaxAttempts() int
	ShouldRetry(err error, attempt int) bool
	Backoff(attempt int) time.Duration
}
