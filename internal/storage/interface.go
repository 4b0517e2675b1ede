package storage

import (
	"context"
	"sort"

	"github.com/mcoot/chesspie/internal/model"
)

// Storage defines the interface for data persistence
type Storage interface {
	// Game operations
	SaveGame(ctx context.Context, game *model.GameRecord) error
	GetGame(ctx context.Context, id model.GameID) (*model.GameRecord, error)
	DeleteGame(ctx context.Context, id model.GameID) error
	ListGames(ctx context.Context) ([]model.GameInfo, error)

	// Piece library operations
	SavePieceDefinition(ctx context.Context, def *model.PieceDefinition) error
	GetPieceDefinition(ctx context.Context, id string) (*model.PieceDefinition, error)
	ListPieceDefinitions(ctx context.Context) ([]model.PieceDefinition, error)
	DeletePieceDefinition(ctx context.Context, id string) error
}

// SortGameInfos orders listings most recently updated first, then by id
func SortGameInfos(infos []model.GameInfo) {
	sort.Slice(infos, func(i, j int) bool {
		if !infos[i].UpdatedAt.Equal(infos[j].UpdatedAt) {
			return infos[i].UpdatedAt.After(infos[j].UpdatedAt)
		}
		return infos[i].ID < infos[j].ID
	})
}
