package ports

import "context"

// SignalStore persists the boolean "tour active" signal.
// The signal survives the reloads the tour itself triggers through navigation:
// it is read once when a tour is constructed and cleared when the tour ends.
type SignalStore interface {
	// Active reports whether a tour was requested and not ended yet.
	Active(ctx context.Context) (bool, error)

	// SetActive records that a tour was requested.
	SetActive(ctx context.Context) error

	// Clear removes the signal. Clearing an absent signal is not an error.
	Clear(ctx context.Context) error
}
