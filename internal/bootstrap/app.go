// Package bootstrap assembles the storage backend, repository, state service
// and optional adapters from configuration. It is shared by cmd/server and
// cmd/todo.
package bootstrap

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/rezkam/monodash/internal/application/todo"
	"github.com/rezkam/monodash/internal/config"
	"github.com/rezkam/monodash/internal/infrastructure/metrics"
	"github.com/rezkam/monodash/internal/infrastructure/notify"
	"github.com/rezkam/monodash/internal/infrastructure/persistence/kvstore"
	"github.com/rezkam/monodash/internal/storage"
	"github.com/rezkam/monodash/internal/storage/fs"
)

// Options tunes what New wires in addition to the service.
type Options struct {
	// Metrics registers Prometheus command metrics on App.Registry.
	Metrics bool

	// Notify enables the NATS change publisher when cfg.Notify is set.
	Notify bool
}

// App holds the wired application graph.
type App struct {
	Service  *todo.StateService
	Store    storage.KeyValue
	Registry *prom.Registry

	cfg     config.StorageConfig
	cleanup func() error
}

// New opens storage and builds the state service.
// The caller must call Close.
func New(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	store, err := OpenStore(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}
	return newApp(ctx, cfg, store, opts)
}

func newApp(ctx context.Context, cfg *config.Config, store storage.KeyValue, opts Options) (*App, error) {
	repo, err := kvstore.NewRepository(store)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to create repository: %w", err)
	}

	app := &App{Store: store, cfg: cfg.Storage}

	svcCfg := todo.Config{}
	if opts.Metrics {
		app.Registry = metrics.NewRegistry()
		svcCfg.Recorder = metrics.NewPrometheusRecorder(app.Registry)
	}
	app.Service = todo.NewStateService(repo, svcCfg)

	var publisher io.Closer
	unsubscribe := func() {}
	if opts.Notify && cfg.Notify.Enabled() {
		p, err := notify.NewPublisher(cfg.Notify.URL, cfg.Notify.Subject, app.Service.Summary)
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		publisher = p
		unsubscribe = app.Service.Subscribe(p.Notify)
		slog.InfoContext(ctx, "publishing state changes", "subject", cfg.Notify.Subject)
	}

	app.cleanup = newCleanup(unsubscribe, publisher, store)
	return app, nil
}

// Watch reloads the service whenever another process changes the storage
// directory. It only does something for the fs backend with watching
// enabled, and blocks until ctx is done.
func (a *App) Watch(ctx context.Context) error {
	store, ok := a.Store.(*fs.Store)
	if !ok || !a.cfg.FSWatch {
		<-ctx.Done()
		return nil
	}
	return store.Watch(ctx, a.cfg.FSDebounce, func(ctx context.Context) {
		if err := a.Service.Reload(ctx); err != nil {
			slog.ErrorContext(ctx, "failed to reload after external change", "error", err)
		}
	})
}

// Close unsubscribes listeners, then closes the publisher and the store.
func (a *App) Close() error {
	return a.cleanup()
}

// MaskPassword masks the password in a connection string for logging.
func MaskPassword(connStr string) string {
	u, err := url.Parse(connStr)
	if err != nil {
		return "[REDACTED]"
	}
	if u.User != nil {
		if _, hasPassword := u.User.Password(); hasPassword {
			u.User = url.UserPassword(u.User.Username(), "xxxxxx")
		}
	}
	return u.String()
}
