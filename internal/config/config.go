package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds every runtime knob. DATABASE_URL selects the Postgres
// backend; when unset the server runs off the local SQLite file at DB_PATH.
type Config struct {
	Port         string        `env:"PORT" envDefault:"8080"`
	DBPath       string        `env:"DB_PATH" envDefault:"data/app.db"`
	DatabaseURL  string        `env:"DATABASE_URL"`
	SeedPath     string        `env:"SEED_PATH" envDefault:"data/seeds/catalog.json"`
	SessionTTL   time.Duration `env:"SESSION_TTL" envDefault:"1h"`
	ReapInterval time.Duration `env:"REAP_INTERVAL" envDefault:"5m"`
}

// Load parses configuration from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}

	return cfg, nil
}
