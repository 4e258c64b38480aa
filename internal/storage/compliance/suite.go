package compliance

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/rezkam/monodash/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunKeyValueComplianceTest runs a standard set of tests against a KeyValue implementation.
// setup is a function that returns a fresh (clean) KeyValue instance for the test.
// cleanup is called after the test to clean up resources (if any).
func RunKeyValueComplianceTest(t *testing.T, setup func() (storage.KeyValue, func())) {
	// Keys follow the "name.v1" shape used by the todo repository.
	newKey := func() string {
		return fmt.Sprintf("test-%s.v1", uuid.NewString())
	}

	t.Run("SetAndGet", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()
		ctx := context.Background()

		key := newKey()
		payload := []byte(`[{"id":"1","title":"Write report"}]`)

		require.NoError(t, store.Set(ctx, key, payload))

		fetched, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, payload, fetched)
	})

	t.Run("SetOverwrites", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()
		ctx := context.Background()

		key := newKey()
		require.NoError(t, store.Set(ctx, key, []byte(`{"selection":"All"}`)))
		require.NoError(t, store.Set(ctx, key, []byte(`{"selection":"Completed"}`)))

		fetched, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.JSONEq(t, `{"selection":"Completed"}`, string(fetched))
	})

	t.Run("KeysAreIndependent", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()
		ctx := context.Background()

		a, b := newKey(), newKey()
		require.NoError(t, store.Set(ctx, a, []byte("a")))
		require.NoError(t, store.Set(ctx, b, []byte("b")))
		require.NoError(t, store.Remove(ctx, a))

		_, err := store.Get(ctx, a)
		assert.ErrorIs(t, err, storage.ErrKeyNotFound)

		fetched, err := store.Get(ctx, b)
		require.NoError(t, err)
		assert.Equal(t, []byte("b"), fetched)
	})

	t.Run("GetNonExistentKey", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()
		ctx := context.Background()

		_, err := store.Get(ctx, newKey())
		assert.ErrorIs(t, err, storage.ErrKeyNotFound)
	})

	t.Run("RemoveNonExistentKey", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()
		ctx := context.Background()

		assert.NoError(t, store.Remove(ctx, newKey()))
	})

	t.Run("EmptyPayload", func(t *testing.T) {
		store, teardown := setup()
		defer teardown()
		ctx := context.Background()

		key := newKey()
		require.NoError(t, store.Set(ctx, key, []byte{}))

		fetched, err := store.Get(ctx, key)
		require.NoError(t, err)
		assert.Empty(t, fetched)
	})
}
