package fs

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rezkam/monodash/internal/storage"
	"github.com/rezkam/monodash/internal/storage/compliance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFSStore_Compliance(t *testing.T) {
	compliance.RunKeyValueComplianceTest(t, func() (storage.KeyValue, func()) {
		tmpDir, err := os.MkdirTemp("", "fs-store-test-*")
		require.NoError(t, err)

		store, err := NewStore(tmpDir)
		require.NoError(t, err)

		cleanup := func() {
			os.RemoveAll(tmpDir)
		}

		return store, cleanup
	})
}

func TestFSStore_RejectsPathKeys(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	for _, key := range []string{"", "..", "../escape", "nested/key"} {
		assert.Error(t, store.Set(ctx, key, []byte("x")), key)
	}
}

func TestFSStore_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Set(context.Background(), "todoItems.v1", []byte("[]")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "todoItems.v1.json", entries[0].Name())
}

func TestFSStore_CancelledContext(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = store.Get(ctx, "todoItems.v1")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFSStore_WatchReportsExternalChanges(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var changes atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- store.Watch(ctx, 20*time.Millisecond, func(context.Context) {
			changes.Add(1)
		})
	}()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, store.Set(ctx, "todoFilter.v1", []byte(`{"selection":"All"}`)))
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, int32(0), changes.Load(), "own writes must not be reported")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "todoFilter.v1.json"), []byte(`{"selection":"Active"}`), 0o644))
	assert.Eventually(t, func() bool { return changes.Load() >= 1 }, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop after cancellation")
	}
}
