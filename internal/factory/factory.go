package factory

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mcoot/chesspie/internal/api/sse"
	"github.com/mcoot/chesspie/internal/config"
	"github.com/mcoot/chesspie/internal/dependencies/clock"
	"github.com/mcoot/chesspie/internal/dependencies/random"
	"github.com/mcoot/chesspie/internal/services/game"
	"github.com/mcoot/chesspie/internal/services/library"
	"github.com/mcoot/chesspie/internal/services/summary"
	"github.com/mcoot/chesspie/internal/storage"
	"github.com/mcoot/chesspie/internal/storage/memory"
	redisstorage "github.com/mcoot/chesspie/internal/storage/redis"
	sqlitestorage "github.com/mcoot/chesspie/internal/storage/sqlite"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	LibraryService *library.Service
	SummaryService *summary.Service
	GameController *game.Controller
	HubManager     *sse.HubManager
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "sqlite")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// SQLitePath is the database file (required if StorageType is "sqlite")
	SQLitePath string
}

// ConfigFromServer builds a factory Config from environment configuration
func ConfigFromServer(cfg config.ServerConfig, logger *slog.Logger) Config {
	out := Config{
		Logger:      logger,
		StorageType: cfg.StorageType,
		SQLitePath:  cfg.SQLitePath,
	}
	if cfg.StorageType == config.StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		if cfg.GameTTL > 0 {
			redisCfg.GameTTL = cfg.GameTTL
		}
		out.RedisConfig = &redisCfg
	}
	return out
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = config.StorageTypeMemory
	}

	switch storageType {
	case config.StorageTypeMemory:
		store = memory.New()
	case config.StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	case config.StorageTypeSQLite:
		sqliteStore, err := sqlitestorage.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		store = sqliteStore
	default:
		return nil, fmt.Errorf("invalid StorageType %q: must be 'memory', 'redis' or 'sqlite'", storageType)
	}

	logger.Info("storage configured", slog.String("type", storageType))

	return newWithDependencies(store, clock.New(), random.New(), logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, logger *slog.Logger) *App {
	hubManager := sse.NewHubManager(logger)
	broadcaster := sse.NewBroadcaster(hubManager, logger)

	libraryService := library.New(store, logger)
	summaryService := summary.New()
	gameController := game.NewController(store, libraryService, summaryService, clk, rnd, logger, broadcaster)

	return &App{
		Storage:        store,
		Clock:          clk,
		Random:         rnd,
		LibraryService: libraryService,
		SummaryService: summaryService,
		GameController: gameController,
		HubManager:     hubManager,
	}
}

// Close disconnects event streams and releases storage resources
func (a *App) Close() error {
	a.HubManager.CloseAll()
	if closer, ok := a.Storage.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
