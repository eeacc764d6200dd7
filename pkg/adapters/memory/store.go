package memory

import (
	"context"
	"sync"
)

// Store implements ports.SignalStore in memory. The signal only survives as
// long as the process, which is enough for hosts that never reload.
// Safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	active bool
}

// NewStore creates a new in-memory store with the signal cleared.
func NewStore() *Store {
	return &Store{}
}

// Active reports whether the signal is set.
func (s *Store) Active(ctx context.Context) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active, nil
}

// SetActive sets the signal.
func (s *Store) SetActive(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = true
	return nil
}

// Clear removes the signal.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = false
	return nil
}
