package bootstrap

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezkam/monodash/internal/config"
	"github.com/rezkam/monodash/internal/domain"
	"github.com/rezkam/monodash/internal/infrastructure/persistence/kvstore"
	"github.com/rezkam/monodash/internal/storage/fs"
	"github.com/rezkam/monodash/internal/storage/memory"
	"github.com/rezkam/monodash/internal/storage/sqlite"
)

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		store, err := OpenStore(ctx, config.StorageConfig{Backend: config.BackendMemory})
		require.NoError(t, err)
		defer store.Close()
		assert.IsType(t, &memory.Store{}, store)
	})

	t.Run("fs", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "data")
		store, err := OpenStore(ctx, config.StorageConfig{Backend: config.BackendFS, FSDir: dir})
		require.NoError(t, err)
		defer store.Close()
		assert.IsType(t, &fs.Store{}, store)
		assert.DirExists(t, dir)
	})

	t.Run("sqlite", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "monodash.db")
		store, err := OpenStore(ctx, config.StorageConfig{Backend: config.BackendSQLite, SQLitePath: path})
		require.NoError(t, err)
		defer store.Close()
		assert.IsType(t, &sqlite.Store{}, store)
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := OpenStore(ctx, config.StorageConfig{Backend: "redis"})
		assert.ErrorIs(t, err, config.ErrUnknownBackend)
	})

	t.Run("postgres without dsn", func(t *testing.T) {
		_, err := OpenStore(ctx, config.StorageConfig{Backend: config.BackendPostgres})
		assert.ErrorIs(t, err, config.ErrDSNRequired)
	})
}

func TestNew_WiresServiceAndMetrics(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{Storage: config.StorageConfig{Backend: config.BackendMemory}}

	app, err := New(ctx, cfg, Options{Metrics: true})
	require.NoError(t, err)
	defer app.Close()

	_, err = app.Service.AddTodo(ctx, "Write report", "", domain.Day{})
	require.NoError(t, err)

	raw, err := app.Store.Get(ctx, kvstore.ItemsKey)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Write report")

	require.NotNil(t, app.Registry)
	count, err := testutil.GatherAndCount(app.Registry, "monodash_command_results_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNew_NotifyDisabledWithoutURL(t *testing.T) {
	cfg := &config.Config{Storage: config.StorageConfig{Backend: config.BackendMemory}}

	app, err := New(context.Background(), cfg, Options{Notify: true})
	require.NoError(t, err)
	assert.Nil(t, app.Registry)
	assert.NoError(t, app.Close())
}

func TestApp_WatchReloadsOnExternalChange(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dir := t.TempDir()
	cfg := &config.Config{Storage: config.StorageConfig{
		Backend:    config.BackendFS,
		FSDir:      dir,
		FSWatch:    true,
		FSDebounce: 20 * time.Millisecond,
	}}
	app, err := New(ctx, cfg, Options{})
	require.NoError(t, err)
	defer app.Close()
	require.NoError(t, app.Service.Initialize(ctx))

	reloaded := make(chan struct{}, 1)
	app.Service.Subscribe(func(context.Context) error {
		select {
		case reloaded <- struct{}{}:
		default:
		}
		return nil
	})

	watchCtx, stopWatch := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- app.Watch(watchCtx) }()
	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)

	payload := `[{"id":"ext-1","title":"From another process","isCompleted":false,` +
		`"createdAt":"2025-03-14T09:30:00Z","updatedAt":"2025-03-14T09:30:00Z"}]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, kvstore.ItemsKey+".json"), []byte(payload), 0o644))

	select {
	case <-reloaded:
	case <-ctx.Done():
		t.Fatal("service was not reloaded")
	}
	items := app.Service.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "From another process", items[0].Title())

	stopWatch()
	assert.NoError(t, <-done)
}

func TestApp_WatchIsNoopForOtherBackends(t *testing.T) {
	cfg := &config.Config{Storage: config.StorageConfig{Backend: config.BackendMemory}}
	app, err := New(context.Background(), cfg, Options{})
	require.NoError(t, err)
	defer app.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, app.Watch(ctx))
}

type recordingCloser struct {
	name  string
	calls *[]string
	err   error
}

func (c recordingCloser) Close() error {
	*c.calls = append(*c.calls, c.name)
	return c.err
}

func TestNewCleanup_Order(t *testing.T) {
	var calls []string
	unsubscribe := func() { calls = append(calls, "unsubscribe") }
	publisher := recordingCloser{name: "publisher", calls: &calls}
	store := recordingCloser{name: "store", calls: &calls, err: errors.New("busy")}

	err := newCleanup(unsubscribe, publisher, store)()

	require.Equal(t, []string{"unsubscribe", "publisher", "store"}, calls)
	assert.ErrorContains(t, err, "store: busy")
}

func TestNewCleanup_NilParts(t *testing.T) {
	assert.NoError(t, newCleanup(nil, nil, nil)())
}

func TestMaskPassword(t *testing.T) {
	assert.Equal(t, "postgres://app:xxxxxx@db:5432/monodash", MaskPassword("postgres://app:secret@db:5432/monodash"))
	assert.Equal(t, "postgres://db:5432/monodash", MaskPassword("postgres://db:5432/monodash"))
	assert.Equal(t, "[REDACTED]", MaskPassword("postgres://%zz"))
}
