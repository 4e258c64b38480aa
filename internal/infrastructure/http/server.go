package http

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	mw "github.com/rezkam/monodash/internal/infrastructure/http/middleware"
)

// Default configuration values for the HTTP server.
const (
	DefaultHost              = ""     // Empty means all interfaces (0.0.0.0)
	DefaultPort              = "8080"
	DefaultReadTimeout       = 15 * time.Second
	DefaultWriteTimeout      = 15 * time.Second
	DefaultIdleTimeout       = 60 * time.Second
	DefaultReadHeaderTimeout = 5 * time.Second
	DefaultMaxHeaderBytes    = 1 << 20 // 1MB
	DefaultMaxBodyBytes      = 1 << 20 // 1MB
)

// ServerConfig holds configuration for the HTTP server and router.
type ServerConfig struct {
	Host              string
	Port              string
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	MaxHeaderBytes    int
	MaxBodyBytes      int64
}

// applyDefaults sets default values for any unset (zero) fields.
func (cfg *ServerConfig) applyDefaults() {
	if cfg.Port == "" {
		cfg.Port = DefaultPort
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.ReadHeaderTimeout <= 0 {
		cfg.ReadHeaderTimeout = DefaultReadHeaderTimeout
	}
	if cfg.MaxHeaderBytes <= 0 {
		cfg.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
}

// Routes are the handlers the server exposes next to its own endpoints.
type Routes struct {
	// API is mounted under /api.
	API http.Handler

	// Metrics is served at GET /metrics when set.
	Metrics http.Handler

	// Ready backs GET /ready. Without it the server is always ready.
	Ready func() bool
}

// APIServer wraps the HTTP server with router and all HTTP concerns.
type APIServer struct {
	server *http.Server
}

// NewAPIServer creates a new HTTP server with router, middleware, and all HTTP concerns configured.
// Applies defaults for zero or invalid config values.
func NewAPIServer(routes Routes, cfg ServerConfig) *APIServer {
	cfg.applyDefaults()

	router := setupRouter(routes, cfg)
	httpServer := setupHTTPServer(router, cfg)

	return &APIServer{
		server: httpServer,
	}
}

// setupRouter creates and configures the Chi router with all middleware and routes.
func setupRouter(routes Routes, cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	// Global middlewares (applied to all routes)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(mw.MaxBodyBytes(cfg.MaxBodyBytes))

	// Liveness
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, r, http.StatusOK, `{"status":"ok"}`)
	})

	// Readiness: the state has been loaded from storage
	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		if routes.Ready != nil && !routes.Ready() {
			writeStatus(w, r, http.StatusServiceUnavailable, `{"status":"loading"}`)
			return
		}
		writeStatus(w, r, http.StatusOK, `{"status":"ready"}`)
	})

	if routes.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", routes.Metrics)
	}

	if routes.API != nil {
		r.Mount("/api", routes.API)
	}

	return r
}

func writeStatus(w http.ResponseWriter, r *http.Request, code int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write([]byte(body)); err != nil {
		slog.ErrorContext(r.Context(), "failed to write status response", "path", r.URL.Path, "error", err)
	}
}

// setupHTTPServer creates the net/http.Server with the given router and config.
// Request contexts derive from a base context that is cancelled on Shutdown,
// so long-lived event streams end instead of holding the server open.
func setupHTTPServer(router http.Handler, cfg ServerConfig) *http.Server {
	baseCtx, cancel := context.WithCancel(context.Background())
	srv := &http.Server{
		Addr:              cfg.Host + ":" + cfg.Port,
		Handler:           otelhttp.NewHandler(router, "monodash.http", otelhttp.WithFilter(notEventStream)),
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}
	srv.RegisterOnShutdown(cancel)
	return srv
}

// notEventStream excludes SSE requests from tracing. They stay open for the
// life of the client and need the unwrapped writer to clear write deadlines.
func notEventStream(r *http.Request) bool {
	return !strings.Contains(r.Header.Get("Accept"), "text/event-stream")
}

// Start listens on the configured address and serves until Shutdown.
func (s *APIServer) Start() error {
	slog.Info("starting HTTP server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown stops accepting connections, ends open event streams and waits
// for in-flight requests until ctx is done.
func (s *APIServer) Shutdown(ctx context.Context) error {
	slog.InfoContext(ctx, "shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// Handler returns the underlying HTTP handler (router) for testing purposes.
func (s *APIServer) Handler() http.Handler {
	return s.server.Handler
}
