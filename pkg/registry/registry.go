// Package registry holds the tour scripts a host can run and validates them
// against the host's view catalog.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/guidepost/pkg/domain"
)

// Registry manages the available scripts by ID.
type Registry struct {
	mu      sync.RWMutex
	scripts map[string]*domain.Script
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		scripts: make(map[string]*domain.Script),
	}
}

// Register adds a script to the registry.
// If a script with the same ID exists, it is overwritten.
func (r *Registry) Register(script *domain.Script) error {
	if script == nil || script.ID == "" {
		return fmt.Errorf("%w: script needs an id", domain.ErrInvalidStep)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scripts[script.ID] = script
	return nil
}

// Get looks up a script by ID.
// Returns an error if the script is not found.
func (r *Registry) Get(id string) (*domain.Script, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	script, ok := r.scripts[id]
	if !ok {
		return nil, fmt.Errorf("script not found: %s", id)
	}
	return script, nil
}

// IDs returns the registered script IDs, sorted.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.scripts))
	for id := range r.scripts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
