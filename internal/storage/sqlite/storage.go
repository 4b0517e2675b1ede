// Package sqlite provides a SQLite-backed storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mcoot/chesspie/internal/model"
	"github.com/mcoot/chesspie/internal/storage"
)

//go:embed schema.sql
var schema string

// Storage persists games and the piece library in SQLite
type Storage struct {
	db *sql.DB
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite database file and applies the schema
func Open(path string) (*Storage, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Storage{db: db}, nil
}

// Close closes the SQLite handle
func (s *Storage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Game operations

func (s *Storage) SaveGame(ctx context.Context, game *model.GameRecord) error {
	cfg, err := json.Marshal(game.Config)
	if err != nil {
		return err
	}
	moves := game.Moves
	if moves == nil {
		moves = []model.MoveRecord{}
	}
	movesJSON, err := json.Marshal(moves)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO games (id, state, winner, move_count, config_json, moves_json, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   state = excluded.state,
		   winner = excluded.winner,
		   move_count = excluded.move_count,
		   config_json = excluded.config_json,
		   moves_json = excluded.moves_json,
		   updated_at = excluded.updated_at`,
		string(game.ID),
		string(game.State),
		string(game.Winner),
		len(game.Moves),
		string(cfg),
		string(movesJSON),
		toMillis(game.CreatedAt),
		toMillis(game.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("save game %s: %w", game.ID, err)
	}
	return nil
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.GameRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, state, winner, config_json, moves_json, created_at, updated_at
		 FROM games WHERE id = ?`,
		string(id),
	)

	var (
		game                model.GameRecord
		cfg, moves          string
		createdAt, updateAt int64
	)
	err := row.Scan(&game.ID, &game.State, &game.Winner, &cfg, &moves, &createdAt, &updateAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrGameNotFound
		}
		return nil, fmt.Errorf("get game %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(cfg), &game.Config); err != nil {
		return nil, fmt.Errorf("decode game %s config: %w", id, err)
	}
	if err := json.Unmarshal([]byte(moves), &game.Moves); err != nil {
		return nil, fmt.Errorf("decode game %s moves: %w", id, err)
	}
	game.CreatedAt = fromMillis(createdAt)
	game.UpdatedAt = fromMillis(updateAt)
	return &game, nil
}

func (s *Storage) DeleteGame(ctx context.Context, id model.GameID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM games WHERE id = ?`, string(id))
	return err
}

// ListGames returns every game, most recently updated first
func (s *Storage) ListGames(ctx context.Context) ([]model.GameInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, state, move_count, updated_at FROM games ORDER BY updated_at DESC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	infos := []model.GameInfo{}
	for rows.Next() {
		var (
			info      model.GameInfo
			updatedAt int64
		)
		if err := rows.Scan(&info.ID, &info.State, &info.MoveCount, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		info.UpdatedAt = fromMillis(updatedAt)
		infos = append(infos, info)
	}
	return infos, rows.Err()
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
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO piece_definitions (piece_key, definition_json) VALUES (?, ?)
		 ON CONFLICT(piece_key) DO UPDATE SET definition_json = excluded.definition_json`,
		def.Key(), string(data),
	)
	return err
}

func (s *Storage) GetPieceDefinition(ctx context.Context, id string) (*model.PieceDefinition, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT definition_json FROM piece_definitions WHERE piece_key = ?`,
		model.PieceKey(id),
	).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrPieceDefinitionNotFound
		}
		return nil, err
	}
	var def model.PieceDefinition
	if err := json.Unmarshal([]byte(data), &def); err != nil {
		return nil, err
	}
	return &def, nil
}

// ListPieceDefinitions returns the library ordered by key
func (s *Storage) ListPieceDefinitions(ctx context.Context) ([]model.PieceDefinition, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT definition_json FROM piece_definitions ORDER BY piece_key ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	defs := []model.PieceDefinition{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var def model.PieceDefinition
		if err := json.Unmarshal([]byte(data), &def); err != nil {
			continue // Skip invalid data
		}
		defs = append(defs, def)
	}
	return defs, rows.Err()
}

func (s *Storage) DeletePieceDefinition(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM piece_definitions WHERE piece_key = ?`, model.PieceKey(id))
	return err
}
