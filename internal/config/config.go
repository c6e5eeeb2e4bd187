// Package config loads the server configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the process configuration.
type Config struct {
	Addr           string        `env:"ADDR" envDefault:":3000"`
	PublicURL      string        `env:"PUBLIC_URL" envDefault:"http://localhost:3000"`
	AllowedOrigins []string      `env:"ALLOWED_ORIGINS" envSeparator:","`
	InactiveTTL    time.Duration `env:"INACTIVE_ROOM_TTL" envDefault:"15m"`
	PruneInterval  time.Duration `env:"PRUNE_INTERVAL" envDefault:"1m"`
	RulesetDir     string        `env:"RULESET_DIR"`
	Locale         string        `env:"OBJECTIVE_LOCALE" envDefault:"pt"`
	ActionRate     float64       `env:"ACTION_RATE" envDefault:"20"`
	ActionBurst    int           `env:"ACTION_BURST" envDefault:"40"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat      string        `env:"LOG_FORMAT" envDefault:"console"`
	GinMode        string        `env:"GIN_MODE" envDefault:"release"`
}

// Load reads an optional .env file from the working directory and then
// parses the environment. Variables already set take precedence over the file.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the server cannot run with.
func (c Config) Validate() error {
	switch {
	case c.InactiveTTL <= 0:
		return fmt.Errorf("INACTIVE_ROOM_TTL must be positive, got %s", c.InactiveTTL)
	case c.PruneInterval < 0:
		return fmt.Errorf("PRUNE_INTERVAL must not be negative, got %s", c.PruneInterval)
	case c.Locale != "pt" && c.Locale != "en":
		return fmt.Errorf("OBJECTIVE_LOCALE must be pt or en, got %q", c.Locale)
	case c.ActionRate <= 0 || c.ActionBurst <= 0:
		return fmt.Errorf("ACTION_RATE and ACTION_BURST must be positive")
	case c.LogFormat != "console" && c.LogFormat != "json":
		return fmt.Errorf("LOG_FORMAT must be console or json, got %q", c.LogFormat)
	}
	return nil
}
