package ports

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSignalStoreContract runs a suite of tests to verify that a SignalStore implementation
// adheres to the defined interface contract. The store must start without the signal.
func RunSignalStoreContract(t *testing.T, store SignalStore) {
	ctx := context.Background()

	t.Run("Initially Inactive", func(t *testing.T) {
		active, err := store.Active(ctx)
		require.NoError(t, err, "Active should not return error")
		assert.False(t, active)
	})

	t.Run("Set and Read", func(t *testing.T) {
		require.NoError(t, store.SetActive(ctx), "SetActive should not return error")

		active, err := store.Active(ctx)
		require.NoError(t, err)
		assert.True(t, active)

		// Setting twice is idempotent
		require.NoError(t, store.SetActive(ctx))
		active, err = store.Active(ctx)
		require.NoError(t, err)
		assert.True(t, active)
	})

	t.Run("Clear", func(t *testing.T) {
		require.NoError(t, store.SetActive(ctx))
		require.NoError(t, store.Clear(ctx), "Clear should not return error")

		active, err := store.Active(ctx)
		require.NoError(t, err)
		assert.False(t, active, "Active after Clear should be false")
	})

	t.Run("Clear Absent", func(t *testing.T) {
		require.NoError(t, store.Clear(ctx))
		assert.NoError(t, store.Clear(ctx), "clearing an absent signal is not an error")
	})
}
