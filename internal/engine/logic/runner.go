// Package logic interprets authored trigger/effect graphs attached to
// pieces and squares.
package logic

import (
	"log/slog"

	"github.com/mcoot/chesspie/internal/grid"
	"github.com/mcoot/chesspie/internal/model"
)

// MaxCascade bounds how many queued triggers one top-level Execute
// drains before discarding the rest.
const MaxCascade = 20

// Owner is the piece or square whose logic graph runs
type Owner struct {
	piece  *model.Piece
	square model.Square
}

// PieceOwner wraps a piece
func PieceOwner(p *model.Piece) Owner {
	return Owner{piece: p}
}

// SquareOwner wraps a square key
func SquareOwner(sq model.Square) Owner {
	return Owner{square: sq}
}

// Piece returns the owning piece, nil for square owners
func (o Owner) Piece() *model.Piece {
	return o.piece
}

// Square returns the owning square, empty for piece owners
func (o Owner) Square() model.Square {
	return o.square
}

// Transformer builds the replacement for a piece that transforms into
// target. The replacement keeps the original's id, colour and move state.
type Transformer interface {
	Transform(p *model.Piece, target string) (*model.Piece, bool)
}

// EffectSink receives cosmetic effects as they happen
type EffectSink func(model.EffectEvent)

// Stats describes the last top-level Execute call
type Stats struct {
	Drained   int
	Discarded int
}

type pending struct {
	owner   Owner
	pieceID model.PieceID
	trigger model.TriggerType
	ctx     *model.TriggerContext
}

// Runner executes logic for one game session. It is not safe for
// concurrent use; the session serializes access.
type Runner struct {
	adapter     grid.Adapter
	logger      *slog.Logger
	sink        EffectSink
	transformer Transformer

	executing bool
	queue     []pending
	stats     Stats
}

// Option configures a Runner
type Option func(*Runner)

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) { r.logger = logger }
}

// WithEffectSink sets where cosmetic effects are reported
func WithEffectSink(sink EffectSink) Option {
	return func(r *Runner) { r.sink = sink }
}

// WithTransformer sets how transformation effects build pieces
func WithTransformer(t Transformer) Option {
	return func(r *Runner) { r.transformer = t }
}

// New creates a runner for boards of the given topology
func New(adapter grid.Adapter, opts ...Option) *Runner {
	r := &Runner{
		adapter: adapter,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Stats returns counters for the last completed top-level Execute
func (r *Runner) Stats() Stats {
	return r.stats
}

// Execute fires trigger on owner. Calls made while an execution is in
// progress are queued and drained breadth-first by the outermost call.
func (r *Runner) Execute(owner Owner, trigger model.TriggerType, ctx *model.TriggerContext, board *model.Board) {
	if ctx == nil {
		ctx = &model.TriggerContext{}
	}
	if ctx.Outcome == nil {
		ctx.Outcome = &model.Outcome{}
	}

	if r.executing {
		p := pending{owner: owner, trigger: trigger, ctx: ctx}
		if owner.piece != nil {
			p.pieceID = owner.piece.ID
		}
		r.queue = append(r.queue, p)
		return
	}

	r.executing = true
	r.stats = Stats{}
	defer func() { r.executing = false }()

	r.run(owner, trigger, ctx, board)

	for len(r.queue) > 0 && r.stats.Drained < MaxCascade {
		next := r.queue[0]
		r.queue = r.queue[1:]
		r.stats.Drained++
		owner, ok := r.resolve(next, board)
		if !ok {
			continue
		}
		r.run(owner, next.trigger, next.ctx, board)
	}

	if len(r.queue) > 0 {
		r.stats.Discarded = len(r.queue)
		r.logger.Warn("logic cascade ceiling reached, discarding queued triggers",
			"limit", MaxCascade,
			"discarded", len(r.queue))
		r.queue = nil
	}
}

// resolve finds the current instance of a queued owner
func (r *Runner) resolve(p pending, board *model.Board) (Owner, bool) {
	if p.owner.piece == nil {
		if board.SquareLogic(p.owner.square) == nil {
			return Owner{}, false
		}
		return p.owner, true
	}
	current, ok := board.FindPiece(p.pieceID)
	if !ok {
		return Owner{}, false
	}
	return PieceOwner(current), true
}

// graph returns the owner's logic and variable store
func (r *Runner) graph(owner Owner, board *model.Board) (model.LogicGraph, model.Variables) {
	if owner.piece != nil {
		if owner.piece.Variables == nil {
			owner.piece.Variables = model.Variables{}
		}
		return owner.piece.Logic, owner.piece.Variables
	}
	sl := board.SquareLogic(owner.square)
	if sl == nil {
		return nil, nil
	}
	if sl.Variables == nil {
		sl.Variables = model.Variables{}
	}
	return sl.Logic, sl.Variables
}

// run fires every matching trigger on owner in declaration order
func (r *Runner) run(owner Owner, trigger model.TriggerType, ctx *model.TriggerContext, board *model.Board) {
	logic, vars := r.graph(owner, board)
	for _, t := range logic.Triggers(trigger) {
		vals := t.Sockets.ResolveAll(vars)
		if !r.matches(owner, trigger, vals, ctx, board) {
			continue
		}
		r.walk(owner, logic, t.ChildID, ctx, board)
	}
}

// walk runs the effect chain starting at id. A visited set stops
// malformed cyclic chains.
func (r *Runner) walk(owner Owner, logic model.LogicGraph, id string, ctx *model.TriggerContext, board *model.Board) {
	visited := make(map[string]bool)
	for id != "" && !visited[id] {
		visited[id] = true
		block, ok := logic.Block(id)
		if !ok {
			return
		}
		// A transformation may have replaced the owning piece
		if owner.piece != nil {
			if current, found := board.FindPiece(owner.piece.ID); found {
				owner = PieceOwner(current)
			}
		}
		_, vars := r.graph(owner, board)
		r.apply(owner, block, block.Sockets.ResolveAll(vars), ctx, board)
		id = block.ChildID
	}
}

func (r *Runner) emit(effect string, sq model.Square, board *model.Board) {
	if r.sink == nil {
		return
	}
	r.sink(model.EffectEvent{
		Type:   effect,
		Square: sq,
		Label:  grid.Label(r.adapter, string(sq), board.Height),
	})
}
