// Package config loads server configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all runtime settings for the server.
type Config struct {
	ListenAddr     string        `env:"MONTECARLO_LISTEN_ADDR" envDefault:":8080"`
	DatabasePath   string        `env:"MONTECARLO_DB_PATH" envDefault:"montecarlo.db"`
	RequestTimeout time.Duration `env:"MONTECARLO_REQUEST_TIMEOUT" envDefault:"60s"`
	ScriptTimeout  time.Duration `env:"MONTECARLO_SCRIPT_TIMEOUT" envDefault:"5s"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
