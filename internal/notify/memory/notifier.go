// Package memory contains an in-memory notifier for tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"newsharvest/internal/notify"
)

// Notifier stores published events for inspection.
type Notifier struct {
	mu     sync.RWMutex
	events []notify.Event
}

// New returns a memory Notifier.
func New() *Notifier {
	return &Notifier{}
}

// Notify records the event and returns a pseudo ID.
func (n *Notifier) Notify(_ context.Context, event notify.Event) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return fmt.Sprintf("memory-%d", len(n.events)), nil
}

// Events returns the recorded events.
func (n *Notifier) Events() []notify.Event {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]notify.Event, len(n.events))
	copy(out, n.events)
	return out
}

// Close implements notify.Notifier.
func (n *Notifier) Close() error {
	return nil
}
