package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, StorageTypeMemory, cfg.StorageType)
	assert.Equal(t, 168*time.Hour, cfg.GameTTL)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Empty(t, cfg.LibraryPath)
	assert.Equal(t, 5*time.Minute, cfg.HubCleanupInterval)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORAGE_TYPE", "redis")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("GAME_TTL", "1h")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LIBRARY_PATH", "data/pieces.json")
	t.Setenv("SSE_CLEANUP_INTERVAL", "30s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, StorageTypeRedis, cfg.StorageType)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.Equal(t, time.Hour, cfg.GameTTL)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "data/pieces.json", cfg.LibraryPath)
	assert.Equal(t, 30*time.Second, cfg.HubCleanupInterval)
}

func TestLoadParseError(t *testing.T) {
	t.Setenv("PORT", "not-an-int")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env:")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ServerConfig
		wantErr string
	}{
		{"memory", ServerConfig{StorageType: StorageTypeMemory, Port: 80}, ""},
		{"redis without url", ServerConfig{StorageType: StorageTypeRedis, Port: 80}, "REDIS_URL"},
		{"sqlite without path", ServerConfig{StorageType: StorageTypeSQLite, Port: 80}, "SQLITE_PATH"},
		{"sqlite", ServerConfig{StorageType: StorageTypeSQLite, SQLitePath: "x.db", Port: 80}, ""},
		{"unknown storage", ServerConfig{StorageType: "mongo", Port: 80}, "STORAGE_TYPE"},
		{"bad port", ServerConfig{StorageType: StorageTypeMemory, Port: 70000}, "PORT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
