// Package archive persists finished run outputs to long-term storage.
package archive

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"
)

// Store uploads a finished run's output and returns the destination URI.
type Store interface {
	Save(ctx context.Context, objectName string, data io.Reader) (string, error)
}

// ObjectName builds the date-partitioned object name for a run's output,
// e.g. datasets/2026/08/25/run-id.csv.
func ObjectName(prefix, runID string, at time.Time) string {
	name := fmt.Sprintf("%s/%s.csv", at.UTC().Format("2006/01/02"), runID)
	return path.Join(prefix, name)
}

// NoOp discards archive requests. It is the default when no provider is
// configured.
type NoOp struct{}

// Save reports an empty URI without storing anything.
func (NoOp) Save(context.Context, string, io.Reader) (string, error) {
	return "", nil
}
