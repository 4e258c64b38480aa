package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rezkam/monodash/internal/config"
	"github.com/rezkam/monodash/internal/storage"
	"github.com/rezkam/monodash/internal/storage/fs"
	"github.com/rezkam/monodash/internal/storage/gcs"
	"github.com/rezkam/monodash/internal/storage/memory"
	"github.com/rezkam/monodash/internal/storage/natskv"
	"github.com/rezkam/monodash/internal/storage/postgres"
	"github.com/rezkam/monodash/internal/storage/sqlite"
)

// OpenStore creates the key/value backend selected by cfg.Backend.
func OpenStore(ctx context.Context, cfg config.StorageConfig) (storage.KeyValue, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		store storage.KeyValue
		err   error
	)
	switch cfg.Backend {
	case config.BackendFS:
		store, err = fs.NewStore(cfg.FSDir)
		slog.InfoContext(ctx, "using filesystem storage", "dir", cfg.FSDir)
	case config.BackendMemory:
		store = memory.NewStore()
		slog.InfoContext(ctx, "using in-memory storage; state is lost on exit")
	case config.BackendSQLite:
		store, err = sqlite.NewStore(cfg.SQLitePath)
		slog.InfoContext(ctx, "using sqlite storage", "path", cfg.SQLitePath)
	case config.BackendPostgres:
		store, err = postgres.NewStore(ctx, postgres.DBConfig{
			DSN:             cfg.Database.DSN,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
			ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
		})
		slog.InfoContext(ctx, "using postgres storage", "dsn", MaskPassword(cfg.Database.DSN))
	case config.BackendGCS:
		store, err = gcs.NewStore(ctx, cfg.GCSBucket, cfg.GCSPrefix)
		slog.InfoContext(ctx, "using gcs storage", "bucket", cfg.GCSBucket, "prefix", cfg.GCSPrefix)
	case config.BackendNATS:
		store, err = natskv.NewStore(ctx, natskv.Config{URL: cfg.NATSURL, Bucket: cfg.NATSBucket})
		slog.InfoContext(ctx, "using nats key/value storage", "url", cfg.NATSURL, "bucket", cfg.NATSBucket)
	default:
		return nil, fmt.Errorf("%w: %s", config.ErrUnknownBackend, cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", cfg.Backend, err)
	}
	return store, nil
}
