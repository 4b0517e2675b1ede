package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
	StorageTypeSQLite = "sqlite"
)

// ServerConfig is the server's environment configuration
type ServerConfig struct {
	Host string `env:"HOST"`
	Port int    `env:"PORT" envDefault:"8080"`

	// StorageType selects the backend: memory, redis or sqlite
	StorageType string        `env:"STORAGE_TYPE" envDefault:"memory"`
	RedisURL    string        `env:"REDIS_URL"`
	GameTTL     time.Duration `env:"GAME_TTL" envDefault:"168h"`
	SQLitePath  string        `env:"SQLITE_PATH" envDefault:"chesspie.db"`

	// LibraryPath optionally names a JSON file of piece definitions
	// loaded into the library at startup
	LibraryPath string `env:"LIBRARY_PATH"`

	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`

	// HubCleanupInterval is how often idle event hubs are swept; zero
	// disables the sweep
	HubCleanupInterval time.Duration `env:"SSE_CLEANUP_INTERVAL" envDefault:"5m"`
}

// Load reads ServerConfig from the environment and validates it
func Load() (ServerConfig, error) {
	var cfg ServerConfig
	if err := env.Parse(&cfg); err != nil {
		return ServerConfig{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return ServerConfig{}, err
	}
	return cfg, nil
}

// Validate checks that the selected storage backend is configured
func (c ServerConfig) Validate() error {
	switch c.StorageType {
	case StorageTypeMemory:
	case StorageTypeRedis:
		if c.RedisURL == "" {
			return errors.New("REDIS_URL required when STORAGE_TYPE=redis")
		}
	case StorageTypeSQLite:
		if c.SQLitePath == "" {
			return errors.New("SQLITE_PATH required when STORAGE_TYPE=sqlite")
		}
	default:
		return fmt.Errorf("invalid STORAGE_TYPE %q: must be memory, redis or sqlite", c.StorageType)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}
	return nil
}
