// Package config loads the values the bootstrap layer feeds into the engine.
package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/cockroachdb/errors"
)

// Config holds all application configuration, populated from BROWZER_*
// environment variables with sensible defaults.
type Config struct {
	Addr string `env:"BROWZER_ADDR" envDefault:":8080"`
	Env  string `env:"BROWZER_ENV" envDefault:"development"`

	ReadTimeout  time.Duration `env:"BROWZER_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout time.Duration `env:"BROWZER_WRITE_TIMEOUT" envDefault:"10s"`
	IdleTimeout  time.Duration `env:"BROWZER_IDLE_TIMEOUT" envDefault:"5s"`

	MaxConnections int `env:"BROWZER_MAX_CONNS" envDefault:"10000"`
	MaxHeaderBytes int `env:"BROWZER_MAX_HEADER_BYTES" envDefault:"8192"`

	// StaticDir, when set, is served under StaticRoute.
	StaticDir   string `env:"BROWZER_STATIC_DIR"`
	StaticRoute string `env:"BROWZER_STATIC_ROUTE" envDefault:"/static"`

	HideBanner bool `env:"BROWZER_HIDE_BANNER"`

	// ShutdownGrace bounds how long Shutdown waits for in-flight requests.
	ShutdownGrace time.Duration `env:"BROWZER_SHUTDOWN_GRACE" envDefault:"10s"`
}

// New loads configuration from the environment.
func New() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, errors.Wrap(err, "parse environment")
	}
	return &cfg, nil
}

// IsProduction reports whether the production logger and defaults apply.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
