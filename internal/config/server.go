package config

import "time"

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Host              string        `env:"MONODASH_HTTP_HOST"`
	Port              string        `env:"MONODASH_HTTP_PORT" default:"8080"`
	ReadTimeout       time.Duration `env:"MONODASH_HTTP_READ_TIMEOUT"`
	WriteTimeout      time.Duration `env:"MONODASH_HTTP_WRITE_TIMEOUT"`
	IdleTimeout       time.Duration `env:"MONODASH_HTTP_IDLE_TIMEOUT"`
	ReadHeaderTimeout time.Duration `env:"MONODASH_HTTP_READ_HEADER_TIMEOUT"`
	MaxHeaderBytes    int           `env:"MONODASH_HTTP_MAX_HEADER_BYTES"`
	MaxBodyBytes      int64         `env:"MONODASH_HTTP_MAX_BODY_BYTES"`
}
