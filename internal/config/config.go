package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/rezkam/monodash/internal/env"
)

// Config holds all configuration for the monodash binaries.
type Config struct {
	Storage         StorageConfig
	HTTP            HTTPConfig
	Observability   ObservabilityConfig
	Notify          NotifyConfig
	ShutdownTimeout time.Duration `env:"MONODASH_SHUTDOWN_TIMEOUT" default:"10s"`
}

// ObservabilityConfig holds observability configuration.
type ObservabilityConfig struct {
	OTelEnabled bool       `env:"MONODASH_OTEL_ENABLED" default:"false"`
	ServiceName string     `env:"OTEL_SERVICE_NAME" default:"monodash"`
	LogLevel    slog.Level `env:"MONODASH_LOG_LEVEL" default:"info"`
}

// NotifyConfig configures the optional NATS change publisher.
// Publishing is disabled when URL is empty.
type NotifyConfig struct {
	URL     string `env:"MONODASH_NOTIFY_NATS_URL"`
	Subject string `env:"MONODASH_NOTIFY_SUBJECT" default:"monodash.state.changed"`
}

// Enabled reports whether change notifications should be published.
func (c NotifyConfig) Enabled() bool {
	return c.URL != ""
}

// Load reads a .env file when present, then loads and validates the
// configuration from the environment.
func Load() (*Config, error) {
	if err := env.LoadDotEnv(); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := env.Load(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}
