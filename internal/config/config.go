// Package config loads engine configuration from environment
// variables.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port          string `env:"PORT" envDefault:"8080"`
	DBPath        string `env:"DB_PATH" envDefault:"cashflow.db"`
	DefaultTrials int    `env:"MC_DEFAULT_TRIALS" envDefault:"1000"`
	// Workers bounds the Monte Carlo pool; 0 means GOMAXPROCS.
	Workers int `env:"MC_WORKERS" envDefault:"0"`
}

// Load parses configuration from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
