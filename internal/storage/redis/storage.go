package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/chesspie/internal/model"
	"github.com/mcoot/chesspie/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Game operations

func (s *Storage) SaveGame(ctx context.Context, game *model.GameRecord) error {
	data, err := json.Marshal(game)
	if err != nil {
		return err
	}

	// Use pipeline for atomic save + index update
	key := gameKey(game.ID)
	pipe := s.client.Pipeline()
	pipe.Set(ctx, key, data, s.cfg.GameTTL)
	pipe.SAdd(ctx, gamesIndexKey(), key)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.GameRecord, error) {
	data, err := s.client.Get(ctx, gameKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrGameNotFound
		}
		return nil, err
	}

	var game model.GameRecord
	if err := json.Unmarshal(data, &game); err != nil {
		return nil, err
	}
	return &game, nil
}

func (s *Storage) DeleteGame(ctx context.Context, id model.GameID) error {
	key := gameKey(id)
	pipe := s.client.Pipeline()
	pipe.Del(ctx, key)
	pipe.SRem(ctx, gamesIndexKey(), key)
	_, err := pipe.Exec(ctx)
	return err
}

// ListGames returns every live game, most recently updated first. Index
// entries whose game has expired are pruned.
func (s *Storage) ListGames(ctx context.Context) ([]model.GameInfo, error) {
	indexKey := gamesIndexKey()

	// Get all game keys from the index
	keys, err := s.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, err
	}

	if len(keys) == 0 {
		return []model.GameInfo{}, nil
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	infos := make([]model.GameInfo, 0, len(values))
	var stale []any
	for i, val := range values {
		str, ok := val.(string)
		if !ok {
			stale = append(stale, keys[i])
			continue
		}
		var game model.GameRecord
		if err := json.Unmarshal([]byte(str), &game); err != nil {
			continue // Skip invalid data
		}
		infos = append(infos, game.Info())
	}
	if len(stale) > 0 {
		if err := s.client.SRem(ctx, indexKey, stale...).Err(); err != nil {
			return nil, err
		}
	}

	storage.SortGameInfos(infos)
	return infos, nil
}

// Piece library operations

func (s *Storage) SavePieceDefinition(ctx context.Context, def *model.PieceDefinition) error {
	if err := def.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(def)
	if err != nil {
		return err
	}
	return s.client.HSet(ctx, piecesKey(), def.Key(), data).Err()
}

func (s *Storage) GetPieceDefinition(ctx context.Context, id string) (*model.PieceDefinition, error) {
	data, err := s.client.HGet(ctx, piecesKey(), model.PieceKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrPieceDefinitionNotFound
		}
		return nil, err
	}

	var def model.PieceDefinition
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, err
	}
	return &def, nil
}

// ListPieceDefinitions returns the library ordered by key
func (s *Storage) ListPieceDefinitions(ctx context.Context) ([]model.PieceDefinition, error) {
	entries, err := s.client.HGetAll(ctx, piecesKey()).Result()
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	defs := make([]model.PieceDefinition, 0, len(keys))
	for _, k := range keys {
		var def model.PieceDefinition
		if err := json.Unmarshal([]byte(entries[k]), &def); err != nil {
			continue // Skip invalid data
		}
		defs = append(defs, def)
	}
	return defs, nil
}

func (s *Storage) DeletePieceDefinition(ctx context.Context, id string) error {
	return s.client.HDel(ctx, piecesKey(), model.PieceKey(id)).Err()
}
