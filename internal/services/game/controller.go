package game

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/mcoot/chesspie/internal/dependencies/clock"
	"github.com/mcoot/chesspie/internal/dependencies/random"
	"github.com/mcoot/chesspie/internal/engine"
	"github.com/mcoot/chesspie/internal/model"
	"github.com/mcoot/chesspie/internal/services/library"
	"github.com/mcoot/chesspie/internal/services/summary"
	"github.com/mcoot/chesspie/internal/storage"
)

// EventPublisher receives game events once a change has been persisted
type EventPublisher interface {
	Publish(event model.Event)
}

type nopPublisher struct{}

func (nopPublisher) Publish(model.Event) {}

// Controller runs game sessions on behalf of clients. Calls for one game
// are serialized; different games proceed in parallel.
type Controller struct {
	storage        storage.Storage
	libraryService library.ServiceInterface
	summaryService *summary.Service
	clock          clock.Clock
	random         random.Random
	logger         *slog.Logger
	publisher      EventPublisher

	mu       sync.Mutex
	locks    map[model.GameID]*gameLock
	sessions map[model.GameID]*engine.Game
}

// NewController creates a new game Controller. A nil publisher drops
// events.
func NewController(
	storage storage.Storage,
	libraryService library.ServiceInterface,
	summaryService *summary.Service,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
	publisher EventPublisher,
) *Controller {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	return &Controller{
		storage:        storage,
		libraryService: libraryService,
		summaryService: summaryService,
		clock:          clock,
		random:         random,
		logger:         logger,
		publisher:      publisher,
		locks:          make(map[model.GameID]*gameLock),
		sessions:       make(map[model.GameID]*engine.Game),
	}
}

// gameLock is a per-game mutex counted by its holders and waiters
type gameLock struct {
	mu   sync.Mutex
	refs int
}

// lock serializes work on one game. The entry is dropped once no call
// holds or waits for it, so locks only exist for games in flight.
func (c *Controller) lock(id model.GameID) func() {
	c.mu.Lock()
	l, ok := c.locks[id]
	if !ok {
		l = &gameLock{}
		c.locks[id] = l
	}
	l.refs++
	c.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		c.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(c.locks, id)
		}
		c.mu.Unlock()
	}
}

// lockCount reports how many per-game locks are held or awaited
func (c *Controller) lockCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.locks)
}

func (c *Controller) cached(id model.GameID) *engine.Game {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessions[id]
}

func (c *Controller) cache(id model.GameID, g *engine.Game) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if g == nil {
		delete(c.sessions, id)
		return
	}
	c.sessions[id] = g
}

// load fetches the record and a session matching it. A cached session is
// reused only while its history equals the stored one; otherwise the
// session is rebuilt by replaying the stored moves.
func (c *Controller) load(ctx context.Context, id model.GameID) (*model.GameRecord, *engine.Game, error) {
	rec, err := c.storage.GetGame(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if g := c.cached(id); g != nil &&
		slices.Equal(g.History(), rec.Moves) &&
		(g.State() == model.GameStateEnded) == rec.IsEnded() {
		return rec, g, nil
	}

	g, err := engine.Replay(rec.Config, rec.Moves, engine.WithLogger(c.sessionLogger(id)))
	if err != nil {
		c.logger.Error("failed to rebuild game",
			slog.String("game_id", string(id)),
			slog.String("error", err.Error()),
		)
		return nil, nil, fmt.Errorf("game %s: %w", id, err)
	}
	if rec.IsEnded() && g.State() != model.GameStateEnded {
		if err := g.End(rec.Winner); err != nil {
			return nil, nil, err
		}
	}
	c.cache(id, g)
	return rec, g, nil
}

func (c *Controller) sessionLogger(id model.GameID) *slog.Logger {
	return c.logger.With(slog.String("game_id", string(id)))
}

// save persists rec. On failure the cached session is dropped so the
// next call rebuilds from what is actually stored.
func (c *Controller) save(ctx context.Context, rec *model.GameRecord) error {
	if err := c.storage.SaveGame(ctx, rec); err != nil {
		c.cache(rec.ID, nil)
		c.logger.Error("failed to save game",
			slog.String("game_id", string(rec.ID)),
			slog.String("error", err.Error()),
		)
		return err
	}
	return nil
}

func (c *Controller) publish(id model.GameID, t model.EventType, payload any) {
	c.publisher.Publish(model.Event{
		Type:      t,
		Timestamp: c.clock.Now(),
		GameID:    id,
		Payload:   payload,
	})
}

func view(rec *model.GameRecord, g *engine.Game) *model.GameView {
	v := g.View()
	v.ID = rec.ID
	v.CreatedAt = rec.CreatedAt
	v.UpdatedAt = rec.UpdatedAt
	return &v
}

// withLibrary appends library definitions the config does not already
// define. The record keeps the merged list so replays do not depend on
// later library changes.
func (c *Controller) withLibrary(cfg model.GameConfig) model.GameConfig {
	if c.libraryService == nil {
		return cfg
	}
	defined := make(map[string]bool)
	for _, d := range cfg.CustomPieces {
		defined[model.PieceKey(d.ID)] = true
		defined[model.PieceKey(d.Name)] = true
	}
	merged := append([]model.PieceDefinition(nil), cfg.CustomPieces...)
	for _, d := range c.libraryService.Definitions() {
		if defined[model.PieceKey(d.ID)] || defined[model.PieceKey(d.Name)] {
			continue
		}
		merged = append(merged, d)
	}
	cfg.CustomPieces = merged
	return cfg
}

// CreateGame builds a session from cfg and stores it
func (c *Controller) CreateGame(ctx context.Context, cfg model.GameConfig) (*model.GameView, error) {
	cfg = c.withLibrary(cfg)
	gameID := random.GameID(c.random)

	g, err := engine.New(cfg, engine.WithLogger(c.sessionLogger(gameID)))
	if err != nil {
		return nil, err
	}

	now := c.clock.Now()
	rec := &model.GameRecord{
		ID:        gameID,
		Config:    cfg,
		Moves:     []model.MoveRecord{},
		State:     g.State(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := c.save(ctx, rec); err != nil {
		return nil, err
	}
	c.cache(gameID, g)

	v := view(rec, g)
	c.publish(gameID, model.EventGameCreated, v)
	c.logger.Info("game created",
		slog.String("game_id", string(gameID)),
		slog.Int("rows", cfg.Rows),
		slog.Int("cols", cfg.Cols),
		slog.String("grid_type", v.Topology),
		slog.Int("piece_count", len(v.Pieces)),
	)
	return v, nil
}

// GetGame returns the current state of a game
func (c *Controller) GetGame(ctx context.Context, gameID model.GameID) (*model.GameView, error) {
	unlock := c.lock(gameID)
	defer unlock()

	rec, g, err := c.load(ctx, gameID)
	if err != nil {
		return nil, err
	}
	return view(rec, g), nil
}

// ListGames lists stored games, most recently updated first
func (c *Controller) ListGames(ctx context.Context) ([]model.GameInfo, error) {
	return c.storage.ListGames(ctx)
}

// DeleteGame removes a game and its cached session
func (c *Controller) DeleteGame(ctx context.Context, gameID model.GameID) error {
	unlock := c.lock(gameID)
	defer unlock()

	if _, err := c.storage.GetGame(ctx, gameID); err != nil {
		return err
	}
	if err := c.storage.DeleteGame(ctx, gameID); err != nil {
		return err
	}
	c.cache(gameID, nil)
	c.logger.Info("game deleted", slog.String("game_id", string(gameID)))
	return nil
}

// MakeMove plays from -> to for the side on turn. Moves the engine
// refuses return ErrMoveRejected and leave the game unchanged.
func (c *Controller) MakeMove(ctx context.Context, gameID model.GameID, from, to string, opts model.MoveOptions) (*model.MoveResult, error) {
	unlock := c.lock(gameID)
	defer unlock()

	rec, g, err := c.load(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if rec.IsEnded() {
		return nil, model.ErrGameEnded
	}
	if _, err := g.Normalize(from); err != nil {
		return nil, err
	}
	if _, err := g.Normalize(to); err != nil {
		return nil, err
	}

	effects := []model.EffectEvent{}
	unsubscribe := g.AddEffectListener(func(e model.EffectEvent) {
		effects = append(effects, e)
	})
	defer unsubscribe()

	if !g.MakeMove(from, to, opts) {
		c.logger.Debug("move rejected",
			slog.String("game_id", string(gameID)),
			slog.String("from", from),
			slog.String("to", to),
		)
		return nil, fmt.Errorf("%w: %s to %s", model.ErrMoveRejected, from, to)
	}

	history := g.History()
	move := history[len(history)-1]
	rec.Moves = append(rec.Moves, move)
	rec.State = g.State()
	rec.Winner = g.Winner()
	rec.UpdatedAt = c.clock.Now()
	if err := c.save(ctx, rec); err != nil {
		return nil, err
	}

	for _, e := range effects {
		c.publish(gameID, model.EventEffect, e)
	}
	c.publish(gameID, model.EventMove, model.MovePayload{Move: move, Turn: g.Turn()})
	if rec.IsEnded() {
		c.publish(gameID, model.EventGameEnded, model.GameEndedPayload{Winner: rec.Winner, Reason: "win"})
		c.logger.Info("game won",
			slog.String("game_id", string(gameID)),
			slog.String("winner", string(rec.Winner)),
			slog.Int("move_count", len(rec.Moves)),
		)
	}

	return &model.MoveResult{
		Move:    g.MoveView(move),
		Effects: effects,
		Game:    view(rec, g),
	}, nil
}

// LegalMoves lists display labels of the squares the piece on from can
// reach this turn
func (c *Controller) LegalMoves(ctx context.Context, gameID model.GameID, from string) ([]string, error) {
	unlock := c.lock(gameID)
	defer unlock()

	_, g, err := c.load(ctx, gameID)
	if err != nil {
		return nil, err
	}
	squares, err := g.LegalMoves(from)
	if err != nil {
		return nil, err
	}
	labels := make([]string, 0, len(squares))
	for _, sq := range squares {
		labels = append(labels, g.Label(sq))
	}
	return labels, nil
}

// Undo takes back the last committed move
func (c *Controller) Undo(ctx context.Context, gameID model.GameID) (*model.GameView, error) {
	unlock := c.lock(gameID)
	defer unlock()

	rec, g, err := c.load(ctx, gameID)
	if err != nil {
		return nil, err
	}
	move, err := g.Undo()
	if err != nil {
		return nil, err
	}

	rec.Moves = rec.Moves[:len(rec.Moves)-1]
	rec.State = g.State()
	rec.Winner = g.Winner()
	rec.UpdatedAt = c.clock.Now()
	if err := c.save(ctx, rec); err != nil {
		return nil, err
	}

	c.publish(gameID, model.EventUndo, model.UndoPayload{Move: move, Turn: g.Turn()})
	return view(rec, g), nil
}

// EndGame finishes a game externally. An empty winner records a draw.
func (c *Controller) EndGame(ctx context.Context, gameID model.GameID, winner model.Color, reason string) (*model.GameView, error) {
	unlock := c.lock(gameID)
	defer unlock()

	rec, g, err := c.load(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if err := g.End(winner); err != nil {
		return nil, err
	}

	rec.State = g.State()
	rec.Winner = g.Winner()
	rec.UpdatedAt = c.clock.Now()
	if err := c.save(ctx, rec); err != nil {
		return nil, err
	}

	if reason == "" {
		reason = "ended"
	}
	c.publish(gameID, model.EventGameEnded, model.GameEndedPayload{Winner: winner, Reason: reason})
	c.logger.Info("game ended",
		slog.String("game_id", string(gameID)),
		slog.String("winner", string(winner)),
		slog.String("reason", reason),
	)
	return view(rec, g), nil
}

// GetSummary reports material and the result of a game
func (c *Controller) GetSummary(ctx context.Context, gameID model.GameID) (*model.Summary, error) {
	v, err := c.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	return c.summaryService.Summarize(v), nil
}

// Interface for dependency injection
type ControllerInterface interface {
	CreateGame(ctx context.Context, cfg model.GameConfig) (*model.GameView, error)
	GetGame(ctx context.Context, gameID model.GameID) (*model.GameView, error)
	ListGames(ctx context.Context) ([]model.GameInfo, error)
	DeleteGame(ctx context.Context, gameID model.GameID) error
	MakeMove(ctx context.Context, gameID model.GameID, from, to string, opts model.MoveOptions) (*model.MoveResult, error)
	LegalMoves(ctx context.Context, gameID model.GameID, from string) ([]string, error)
	Undo(ctx context.Context, gameID model.GameID) (*model.GameView, error)
	EndGame(ctx context.Context, gameID model.GameID, winner model.Color, reason string) (*model.GameView, error)
	GetSummary(ctx context.Context, gameID model.GameID) (*model.Summary, error)
}

var _ ControllerInterface = (*Controller)(nil)
