// Package engine runs one variant game session: board construction,
// move validation, logic triggers and turn sequencing.
package engine

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/mcoot/chesspie/internal/engine/logic"
	"github.com/mcoot/chesspie/internal/engine/rules"
	"github.com/mcoot/chesspie/internal/grid"
	"github.com/mcoot/chesspie/internal/model"
)

// EffectListener observes cosmetic effects. Listeners cannot influence
// the outcome of a move.
type EffectListener func(model.EffectEvent)

// undoFrame restores the session to just before a committed move
type undoFrame struct {
	board  *model.Board
	state  model.GameState
	winner model.Color
}

// Game is a single-threaded session. Callers serialize access.
type Game struct {
	cfg        model.GameConfig
	adapter    grid.Adapter
	board      *model.Board
	prototypes *model.PrototypeTable
	eval       *rules.Evaluator
	runner     *logic.Runner
	logger     *slog.Logger

	listeners    map[int]EffectListener
	nextListener int

	state   model.GameState
	winner  model.Color
	history []model.MoveRecord
	undo    []undoFrame
}

// Option configures a Game
type Option func(*Game)

// WithLogger sets the session logger
func WithLogger(logger *slog.Logger) Option {
	return func(g *Game) { g.logger = logger }
}

// WithEffectListener subscribes a listener from construction
func WithEffectListener(l EffectListener) Option {
	return func(g *Game) { g.AddEffectListener(l) }
}

// New builds a session from an authored configuration. Only structural
// problems fail; malformed authored content degrades to unplayable
// pieces or inert logic.
func New(cfg model.GameConfig, opts ...Option) (*Game, error) {
	if cfg.Rows <= 0 || cfg.Cols <= 0 {
		return nil, fmt.Errorf("%w: board must be at least 1x1, got %dx%d", model.ErrInvalidConfig, cfg.Rows, cfg.Cols)
	}

	g := &Game{
		cfg:        cfg,
		logger:     slog.New(slog.DiscardHandler),
		listeners:  make(map[int]EffectListener),
		prototypes: model.NewPrototypeTable(cfg.CustomPieces),
		state:      model.GameStateAwaitingMove,
	}
	for _, opt := range opts {
		opt(g)
	}

	adapter, known := grid.For(grid.Topology(cfg.Topology))
	if !known {
		g.logger.Warn("unknown grid topology, using square", "topology", cfg.Topology)
	}
	g.adapter = adapter
	g.eval = rules.New(adapter)
	g.runner = logic.New(adapter,
		logic.WithLogger(g.logger),
		logic.WithEffectSink(g.emit),
		logic.WithTransformer(g),
	)

	board, err := g.buildBoard(cfg)
	if err != nil {
		return nil, err
	}
	g.board = board
	return g, nil
}

func (g *Game) buildBoard(cfg model.GameConfig) (*model.Board, error) {
	var active []model.Square
	if len(cfg.ActiveSquares) == 0 {
		for _, c := range g.adapter.GenerateInitialGrid(cfg.Rows, cfg.Cols) {
			active = append(active, model.Square(g.adapter.CoordToString(c)))
		}
	} else {
		for _, raw := range cfg.ActiveSquares {
			key, err := grid.Normalize(g.adapter, raw, cfg.Rows)
			if err != nil {
				return nil, fmt.Errorf("%w: active square %q: %w", model.ErrInvalidConfig, raw, err)
			}
			active = append(active, model.Square(key))
		}
	}
	board := model.NewBoard(cfg.Cols, cfg.Rows, string(g.adapter.Topology()), active)
	if cfg.FirstTurn != "" {
		if !cfg.FirstTurn.Valid() {
			return nil, fmt.Errorf("%w: first turn %q", model.ErrInvalidConfig, cfg.FirstTurn)
		}
		board.Turn = cfg.FirstTurn
	}

	// Placements are created in canonical key order so ids are stable
	// across rebuilds of the same config.
	type placement struct {
		sq model.Square
		model.Placement
	}
	placements := make([]placement, 0, len(cfg.Placements))
	for raw, p := range cfg.Placements {
		key, err := grid.Normalize(g.adapter, raw, cfg.Rows)
		if err != nil {
			return nil, fmt.Errorf("%w: placement %q: %w", model.ErrInvalidConfig, raw, err)
		}
		if !p.Color.Valid() {
			return nil, fmt.Errorf("%w: placement %q: %w %q", model.ErrInvalidConfig, raw, model.ErrInvalidColor, p.Color)
		}
		placements = append(placements, placement{sq: model.Square(key), Placement: p})
	}
	sort.Slice(placements, func(i, j int) bool { return placements[i].sq < placements[j].sq })

	for i, p := range placements {
		if !board.IsActive(p.sq) {
			g.logger.Warn("placement on inactive square ignored", "square", p.sq, "type", p.Type)
			continue
		}
		piece := g.newPiece(model.PieceID(fmt.Sprintf("p%d", i+1)), p.Type, p.Color)
		board.SetPiece(p.sq, piece)
	}

	for raw, def := range cfg.SquareLogic {
		key, err := grid.Normalize(g.adapter, raw, cfg.Rows)
		if err != nil {
			return nil, fmt.Errorf("%w: square logic %q: %w", model.ErrInvalidConfig, raw, err)
		}
		board.SetSquareLogic(model.Square(key), &model.SquareLogic{
			Logic:     def.Logic.Clone(),
			Variables: def.Variables.Clone(),
		})
	}
	return board, nil
}

// newPiece instantiates a custom prototype or a built-in type. Unknown
// types produce a piece with no rules.
func (g *Game) newPiece(id model.PieceID, pieceType string, color model.Color) *model.Piece {
	if proto, ok := g.prototypes.Resolve(pieceType); ok {
		def, _ := g.prototypes.Get(proto)
		name := def.Name
		if name == "" {
			name = def.ID
		}
		typeName := def.ID
		if typeName == "" {
			typeName = def.Name
		}
		pieceRules := model.CloneRules(def.RulesFor(color))
		if len(pieceRules) == 0 {
			pieceRules = rules.Builtin(def.Name)
		}
		return &model.Piece{
			ID:        id,
			Type:      typeName,
			Name:      name,
			Color:     color,
			Rules:     pieceRules,
			Logic:     def.Logic.Clone(),
			Variables: def.Variables.Clone(),
			Custom:    true,
			Prototype: proto,
		}
	}
	if !rules.IsBuiltin(pieceType) {
		g.logger.Warn("unknown piece type has no movement rules", "type", pieceType)
	}
	return &model.Piece{
		ID:        id,
		Type:      strings.ToLower(strings.TrimSpace(pieceType)),
		Name:      pieceType,
		Color:     color,
		Rules:     rules.Builtin(pieceType),
		Variables: model.Variables{},
		Prototype: model.NoPrototype,
	}
}

// Transform builds the replacement for p becoming target. Identity,
// colour and move state carry over; variables reset to the new type's
// defaults.
func (g *Game) Transform(p *model.Piece, target string) (*model.Piece, bool) {
	if _, ok := g.prototypes.Resolve(target); !ok && !rules.IsBuiltin(target) {
		return nil, false
	}
	next := g.newPiece(p.ID, target, p.Color)
	next.HasMoved = p.HasMoved
	return next, true
}

// AddEffectListener subscribes l and returns a function that removes it
func (g *Game) AddEffectListener(l EffectListener) func() {
	id := g.nextListener
	g.nextListener++
	g.listeners[id] = l
	return func() { delete(g.listeners, id) }
}

func (g *Game) emit(e model.EffectEvent) {
	ids := make([]int, 0, len(g.listeners))
	for id := range g.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		g.listeners[id](e)
	}
}

// Config returns the configuration the session was built from
func (g *Game) Config() model.GameConfig {
	return g.cfg
}

// Board returns a copy of the current board
func (g *Game) Board() *model.Board {
	return g.board.Clone()
}

// Snapshot returns the comparable board state
func (g *Game) Snapshot() model.BoardSnapshot {
	return g.board.Snapshot()
}

// State returns the current phase
func (g *Game) State() model.GameState {
	return g.state
}

// Winner returns the winning side once the game has ended, if any
func (g *Game) Winner() model.Color {
	return g.winner
}

// Turn returns the side to move
func (g *Game) Turn() model.Color {
	return g.board.Turn
}

// History returns the committed moves in order
func (g *Game) History() []model.MoveRecord {
	return append([]model.MoveRecord(nil), g.history...)
}

// Normalize converts an external square key to its canonical form
func (g *Game) Normalize(raw string) (model.Square, error) {
	key, err := grid.Normalize(g.adapter, raw, g.board.Height)
	if err != nil {
		return "", fmt.Errorf("%w: %w", model.ErrInvalidSquare, err)
	}
	return model.Square(key), nil
}

// Label renders a canonical key for display
func (g *Game) Label(sq model.Square) string {
	return grid.Label(g.adapter, string(sq), g.board.Height)
}

// End finishes the game externally, for resignation or agreed results.
// An empty winner records a draw.
func (g *Game) End(winner model.Color) error {
	if g.state == model.GameStateEnded {
		return model.ErrGameEnded
	}
	if winner != "" && !winner.Valid() {
		return fmt.Errorf("%w: %q", model.ErrInvalidColor, winner)
	}
	g.state = model.GameStateEnded
	g.winner = winner
	return nil
}

// Undo restores the board to before the last committed move. Ended
// games cannot be undone.
func (g *Game) Undo() (model.MoveRecord, error) {
	if g.state == model.GameStateEnded {
		return model.MoveRecord{}, model.ErrGameEnded
	}
	if len(g.history) == 0 {
		return model.MoveRecord{}, model.ErrNothingToUndo
	}
	frame := g.undo[len(g.undo)-1]
	g.undo = g.undo[:len(g.undo)-1]
	last := g.history[len(g.history)-1]
	g.history = g.history[:len(g.history)-1]

	g.board = frame.board
	g.state = frame.state
	g.winner = frame.winner
	return last, nil
}

// Replay rebuilds a session by applying moves to a fresh board
func Replay(cfg model.GameConfig, moves []model.MoveRecord, opts ...Option) (*Game, error) {
	g, err := New(cfg, opts...)
	if err != nil {
		return nil, err
	}
	for i, m := range moves {
		if !g.MakeMove(string(m.From), string(m.To), model.MoveOptions{Promotion: m.Promotion}) {
			return nil, fmt.Errorf("%w: move %d %s-%s", model.ErrReplayMismatch, i+1, m.From, m.To)
		}
	}
	return g, nil
}

// View renders the session with display labels. Identity and timestamps
// are left for the caller.
func (g *Game) View() model.GameView {
	view := model.GameView{
		State:    g.state,
		Turn:     g.board.Turn,
		Winner:   g.winner,
		Rows:     g.board.Height,
		Cols:     g.board.Width,
		Topology: g.board.Topology,
		Active:   []string{},
		Pieces:   []model.PieceView{},
		Moves:    make([]model.MoveView, 0, len(g.history)),
	}
	for _, sq := range g.board.ActiveSquares() {
		view.Active = append(view.Active, g.Label(sq))
	}
	for _, p := range g.board.Pieces() {
		view.Pieces = append(view.Pieces, model.PieceView{
			ID:        p.ID,
			Type:      p.Type,
			Name:      p.Name,
			Color:     p.Color,
			Square:    p.Position,
			Label:     g.Label(p.Position),
			HasMoved:  p.HasMoved,
			Custom:    p.Custom,
			Variables: p.Variables.Clone(),
		})
	}
	for _, m := range g.history {
		view.Moves = append(view.Moves, g.MoveView(m))
	}
	return view
}

// MoveView labels a committed move
func (g *Game) MoveView(m model.MoveRecord) model.MoveView {
	return model.MoveView{MoveRecord: m, FromLabel: g.Label(m.From), ToLabel: g.Label(m.To)}
}
