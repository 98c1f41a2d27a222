// Package config handles application configuration from environment variables.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds all application configuration.
type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL"`
	RedisAddr   string `env:"REDIS_ADDR" envDefault:"localhost:6379"`

	// Coaching model provider.
	CoachAPIKey  string  `env:"COACH_API_KEY"`
	CoachBaseURL string  `env:"COACH_BASE_URL"`
	CoachModel   string  `env:"COACH_MODEL"`
	Temperature  float64 `env:"COACH_TEMPERATURE" envDefault:"0.3"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// Validate ensures everything the server cannot run without is present.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.CoachAPIKey == "" {
		return fmt.Errorf("COACH_API_KEY is required")
	}
	return nil
}
