// Package notify announces finished runs to downstream consumers.
package notify

import (
	"context"
	"time"
)

// Event describes one finished scrape run.
type Event struct {
	RunID        string    `json:"run_id"`
	Output       string    `json:"output"`
	OutputSHA256 string    `json:"output_sha256"`
	ArchiveURI   string    `json:"archive_uri,omitempty"`
	Total        int       `json:"total"`
	Success      int       `json:"success"`
	Failed       int       `json:"failed"`
	Skipped      int       `json:"skipped"`
	FinishedAt   time.Time `json:"finished_at"`
}

// Notifier publishes run events. Implementations return the message ID
// assigned by the transport.
type Notifier interface {
	Notify(ctx context.Context, event Event) (string, error)
	Close() error
}

// NoOp drops events. It is the default when no provider is configured.
type NoOp struct{}

// Notify reports an empty message ID without sending anything.
func (NoOp) Notify(context.Context, Event) (string, error) {
	return "", nil
}

// Close implements Notifier.
func (NoOp) Close() error {
	return nil
}
