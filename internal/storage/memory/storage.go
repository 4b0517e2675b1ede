package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/mcoot/chesspie/internal/model"
	"github.com/mcoot/chesspie/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	games  map[model.GameID]*model.GameRecord
	pieces map[string]model.PieceDefinition
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		games:  make(map[model.GameID]*model.GameRecord),
		pieces: make(map[string]model.PieceDefinition),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Game operations

func (s *Storage) SaveGame(ctx context.Context, game *model.GameRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[game.ID] = game.Clone()
	return nil
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.GameRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	game, ok := s.games[id]
	if !ok {
		return nil, model.ErrGameNotFound
	}
	return game.Clone(), nil
}

func (s *Storage) DeleteGame(ctx context.Context, id model.GameID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.games, id)
	return nil
}

// ListGames returns every game, most recently updated first
func (s *Storage) ListGames(ctx context.Context) ([]model.GameInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	infos := make([]model.GameInfo, 0, len(s.games))
	for _, g := range s.games {
		infos = append(infos, g.Info())
	}
	storage.SortGameInfos(infos)
	return infos, nil
}

// Piece library operations

func (s *Storage) SavePieceDefinition(ctx context.Context, def *model.PieceDefinition) error {
	if err := def.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pieces[def.Key()] = *def
	return nil
}

func (s *Storage) GetPieceDefinition(ctx context.Context, id string) (*model.PieceDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	def, ok := s.pieces[model.PieceKey(id)]
	if !ok {
		return nil, model.ErrPieceDefinitionNotFound
	}
	return &def, nil
}

// ListPieceDefinitions returns the library ordered by key
func (s *Storage) ListPieceDefinitions(ctx context.Context) ([]model.PieceDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.pieces))
	for k := range s.pieces {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	defs := make([]model.PieceDefinition, 0, len(keys))
	for _, k := range keys {
		defs = append(defs, s.pieces[k])
	}
	return defs, nil
}

func (s *Storage) DeletePieceDefinition(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pieces, model.PieceKey(id))
	return nil
}
