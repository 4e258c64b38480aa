package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rezkam/monodash/internal/bootstrap"
	"github.com/rezkam/monodash/internal/config"
	httpserver "github.com/rezkam/monodash/internal/infrastructure/http"
	"github.com/rezkam/monodash/internal/infrastructure/http/handler"
	"github.com/rezkam/monodash/internal/infrastructure/metrics"
	"github.com/rezkam/monodash/internal/infrastructure/observability"
)

func main() {
	if err := run(); err != nil {
		// slog may not be initialized if config fails
		fmt.Fprintf(os.Stderr, "failed to run: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Root context for all normal operations; cancelled on SIGTERM/SIGINT.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Configuration via OTEL_* env vars (endpoint, headers, resource attributes)
	providers, err := observability.Setup(ctx, observability.Config{
		Enabled:     cfg.Observability.OTelEnabled,
		ServiceName: cfg.Observability.ServiceName,
		LogLevel:    cfg.Observability.LogLevel,
	})
	if err != nil {
		return fmt.Errorf("failed to init observability: %w", err)
	}
	defer func() {
		// Bounded so an unreachable collector cannot hang shutdown
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "failed to shutdown observability providers", "error", err)
		}
	}()

	slog.InfoContext(ctx, "starting monodash server", "storage", cfg.Storage.Backend)

	app, err := bootstrap.New(ctx, cfg, bootstrap.Options{Metrics: true, Notify: true})
	if err != nil {
		return fmt.Errorf("failed to wire application: %w", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			slog.Error("failed to close application", "error", err)
		}
	}()

	server := httpserver.NewAPIServer(
		httpserver.Routes{
			API:     handler.NewRouter(app.Service),
			Metrics: metrics.Handler(app.Registry),
			Ready:   app.Service.IsInitialized,
		},
		httpserver.ServerConfig{
			Host:              cfg.HTTP.Host,
			Port:              cfg.HTTP.Port,
			ReadTimeout:       cfg.HTTP.ReadTimeout,
			WriteTimeout:      cfg.HTTP.WriteTimeout,
			IdleTimeout:       cfg.HTTP.IdleTimeout,
			ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
			MaxHeaderBytes:    cfg.HTTP.MaxHeaderBytes,
			MaxBodyBytes:      cfg.HTTP.MaxBodyBytes,
		},
	)

	errResult := make(chan error, 3)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errResult <- fmt.Errorf("failed to serve HTTP: %w", err)
		}
	}()
	go func() {
		if err := app.Watch(ctx); err != nil {
			errResult <- fmt.Errorf("storage watcher stopped: %w", err)
		}
	}()

	// Serve /health while state loads; /ready flips once it is in memory.
	if err := app.Service.Initialize(ctx); err != nil {
		errResult <- fmt.Errorf("failed to load todo state: %w", err)
	}

	select {
	case <-ctx.Done():
		slog.InfoContext(ctx, "shutting down")
	case err := <-errResult:
		cancel()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer shutdownCancel()
		_ = server.Shutdown(shutdownCtx)
		return err
	}

	// The main context is already cancelled; give in-flight requests a window.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "HTTP server shutdown failed", "error", err)
	} else {
		slog.InfoContext(shutdownCtx, "HTTP server shutdown complete")
	}
	return nil
}
