package library

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"

	"github.com/mcoot/chesspie/internal/model"
	"github.com/mcoot/chesspie/internal/storage"
)

// Service holds the shared piece library: authored definitions that
// games can place by id or name without embedding them in their config.
type Service struct {
	storage storage.Storage
	logger  *slog.Logger

	mu   sync.RWMutex
	defs map[string]model.PieceDefinition
}

// New creates a new library Service
func New(storage storage.Storage, logger *slog.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
		defs:    make(map[string]model.PieceDefinition),
	}
}

// LoadFromStorage replaces the in-memory library with the stored one
func (s *Service) LoadFromStorage(ctx context.Context) error {
	defs, err := s.storage.ListPieceDefinitions(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defs = make(map[string]model.PieceDefinition, len(defs))
	for _, d := range defs {
		s.defs[d.Key()] = d
	}
	return nil
}

// LoadFromFile reads a JSON file holding an array of piece definitions,
// or an object with a "pieces" array, and saves every definition.
func (s *Service) LoadFromFile(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	defs, err := Decode(data)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	if err := s.Save(ctx, defs); err != nil {
		return 0, err
	}
	s.logger.Info("piece library loaded",
		slog.String("path", path),
		slog.Int("count", len(defs)),
	)
	return len(defs), nil
}

// Decode parses either a bare array of definitions or {"pieces": [...]}
func Decode(data []byte) ([]model.PieceDefinition, error) {
	var defs []model.PieceDefinition
	if err := json.Unmarshal(data, &defs); err == nil {
		return defs, nil
	}
	var wrapped struct {
		Pieces []model.PieceDefinition `json:"pieces"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrInvalidPieceDefinition, err)
	}
	return wrapped.Pieces, nil
}

// Save validates and stores defs. Nothing is stored when any definition
// is invalid.
func (s *Service) Save(ctx context.Context, defs []model.PieceDefinition) error {
	for i := range defs {
		if err := defs[i].Validate(); err != nil {
			return err
		}
	}
	for i := range defs {
		if err := s.storage.SavePieceDefinition(ctx, &defs[i]); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range defs {
		s.defs[d.Key()] = d
	}
	return nil
}

// Get finds a definition by id or name
func (s *Service) Get(ref string) (model.PieceDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key := model.PieceKey(ref)
	if d, ok := s.defs[key]; ok {
		return d, nil
	}
	for _, d := range s.defs {
		if model.PieceKey(d.Name) == key {
			return d, nil
		}
	}
	return model.PieceDefinition{}, model.ErrPieceDefinitionNotFound
}

// Delete removes a definition from the library
func (s *Service) Delete(ctx context.Context, id string) error {
	def, err := s.Get(id)
	if err != nil {
		return err
	}
	if err := s.storage.DeletePieceDefinition(ctx, def.Key()); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.defs, def.Key())
	return nil
}

// Definitions returns the library ordered by key
func (s *Service) Definitions() []model.PieceDefinition {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.defs))
	for k := range s.defs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]model.PieceDefinition, 0, len(keys))
	for _, k := range keys {
		out = append(out, s.defs[k])
	}
	return out
}

// Count returns the number of definitions in the library
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.defs)
}

// Interface check
type ServiceInterface interface {
	LoadFromStorage(ctx context.Context) error
	LoadFromFile(ctx context.Context, path string) (int, error)
	Save(ctx context.Context, defs []model.PieceDefinition) error
	Get(ref string) (model.PieceDefinition, error)
	Delete(ctx context.Context, id string) error
	Definitions() []model.PieceDefinition
	Count() int
}

var _ ServiceInterface = (*Service)(nil)
