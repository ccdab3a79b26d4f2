// Package config loads charsheet settings from the environment. Command-line
// flags take precedence over every value here.
package config

import (
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
)

// Config holds environment defaults for the CLI.
type Config struct {
	DB       string     `env:"CHARSHEET_DB"        envDefault:"charsheet.db"`
	Format   string     `env:"CHARSHEET_FORMAT"    envDefault:"text"`
	LogLevel slog.Level `env:"CHARSHEET_LOG_LEVEL" envDefault:"warn"`
}

// Load parses the environment into a Config and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate checks values that the environment parser accepts but the CLI
// does not.
func (c Config) Validate() error {
	switch c.Format {
	case "json", "text":
	default:
		return fmt.Errorf("invalid CHARSHEET_FORMAT %q: must be json or text", c.Format)
	}
	if c.DB == "" {
		return fmt.Errorf("CHARSHEET_DB must not be empty")
	}
	return nil
}
