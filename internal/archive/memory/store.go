// Package memory keeps archived outputs in memory for tests and development.
package memory

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// Store holds archived outputs in memory and returns pseudo URIs.
type Store struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// New creates an in-memory archive store.
func New() *Store {
	return &Store{data: make(map[string][]byte)}
}

// Save keeps a copy of the data and returns a memory:// URI.
func (s *Store) Save(_ context.Context, objectName string, data io.Reader) (string, error) {
	byteData, err := io.ReadAll(data)
	if err != nil {
		return "", fmt.Errorf("read data: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[objectName] = byteData
	return fmt.Sprintf("memory://%s", objectName), nil
}

// Object returns a copy of the stored bytes for an object name.
func (s *Store) Object(objectName string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.data[objectName]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), b...), true
}
