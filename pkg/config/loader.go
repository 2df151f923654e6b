package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Load allocates a T and parses environment variables into it using `env`
// tags.
//
// Example:
//
//	type Config struct {
//	    Port     int    `env:"PORTAL_HTTP_PORT" envDefault:"8001"`
//	    LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
//	}
//	cfg, err := config.Load[Config]()
func Load[T any]() (*T, error) {
	cfg := new(T)
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
