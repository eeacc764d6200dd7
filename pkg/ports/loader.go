package ports

import (
	"context"

	"github.com/aretw0/guidepost/pkg/domain"
)

// ScriptLoader retrieves a tour script from a storage backend (file, loam directory, memory).
type ScriptLoader interface {
	LoadScript(ctx context.Context) (*domain.Script, error)
}

// Watchable defines an interface for loaders that can notify about backend changes.
// This is typically used for hot-reload while authoring scripts.
type Watchable interface {
	// Watch returns a channel that is signaled when the underlying script changes.
	Watch(ctx context.Context) (<-chan struct{}, error)
}
