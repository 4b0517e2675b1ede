package engine

import (
	"strings"

	"github.com/mcoot/chesspie/internal/engine/logic"
	"github.com/mcoot/chesspie/internal/grid"
	"github.com/mcoot/chesspie/internal/model"
)

// threatPair is an attacker able to capture a target
type threatPair struct {
	attacker model.PieceID
	target   model.PieceID
}

// IsLegal reports whether the side to move may play from -> to
func (g *Game) IsLegal(from, to string) bool {
	if g.state == model.GameStateEnded {
		return false
	}
	fromSq, err := g.Normalize(from)
	if err != nil {
		return false
	}
	toSq, err := g.Normalize(to)
	if err != nil {
		return false
	}
	piece := g.board.Piece(fromSq)
	if piece == nil || piece.Color != g.board.Turn {
		return false
	}
	return g.eval.IsLegal(piece, fromSq, toSq, g.board)
}

// LegalMoves lists the destinations available to the piece on from. It
// is empty when the piece's side is not on turn.
func (g *Game) LegalMoves(from string) ([]model.Square, error) {
	fromSq, err := g.Normalize(from)
	if err != nil {
		return nil, err
	}
	piece := g.board.Piece(fromSq)
	if piece == nil {
		return nil, model.ErrPieceNotFound
	}
	if g.state == model.GameStateEnded || piece.Color != g.board.Turn {
		return nil, nil
	}
	return g.eval.LegalMoves(fromSq, g.board), nil
}

// MakeMove applies a move if it is legal and no triggered effect vetoes
// it. Rejected moves leave the session unchanged.
func (g *Game) MakeMove(from, to string, opts model.MoveOptions) bool {
	if g.state == model.GameStateEnded {
		return false
	}
	fromSq, err := g.Normalize(from)
	if err != nil {
		return false
	}
	toSq, err := g.Normalize(to)
	if err != nil {
		return false
	}
	piece := g.board.Piece(fromSq)
	if piece == nil || piece.Color != g.board.Turn {
		return false
	}

	g.state = model.GameStateValidating
	if !g.eval.IsLegal(piece, fromSq, toSq, g.board) {
		return g.reject(fromSq, toSq, "no rule allows the move")
	}

	snapshot := g.board.Clone()
	attacked := g.eval.IsAttacked(toSq, piece.Color.Opponent(), g.board)
	before := g.threats()
	captured := g.board.Piece(toSq)

	g.board.SetPiece(fromSq, nil)
	g.board.SetPiece(toSq, piece)
	piece.HasMoved = true

	outcome := &model.Outcome{}
	ctx := model.TriggerContext{
		Mover:      piece,
		Captured:   captured,
		Piece:      piece,
		From:       fromSq,
		To:         toSq,
		Square:     toSq,
		IsAttacked: attacked,
		Outcome:    outcome,
	}
	if captured != nil {
		ctx.Attacker = piece
	}
	g.fireMoveTriggers(ctx, before)

	_, moverAlive := g.board.FindPiece(piece.ID)
	if outcome.Vetoed() {
		if moverAlive {
			g.board = snapshot
			return g.reject(fromSq, toSq, "vetoed by effect")
		}
		// The mover was removed: the move is consumed. The tentative
		// placement is rolled back so a victim stays on its square and
		// only the mover is gone.
		restored := snapshot.Clone()
		restored.SetPiece(fromSq, nil)
		g.board = restored
	}

	record := model.MoveRecord{
		From:      fromSq,
		To:        toSq,
		PieceType: piece.Type,
		Color:     piece.Color,
		Consumed:  !moverAlive,
	}
	if captured != nil && moverAlive {
		record.Captured = captured.Type
	}
	if moverAlive && opts.Promotion != "" && g.promote(piece.ID, opts.Promotion) {
		record.Promotion = opts.Promotion
	}

	g.undo = append(g.undo, undoFrame{board: snapshot, state: model.GameStateAwaitingMove, winner: g.winner})
	g.history = append(g.history, record)
	g.board.Turn = g.board.Turn.Opponent()
	g.state = model.GameStateCommitted

	if !outcome.GameWon {
		g.startTurn(g.board.Turn, outcome)
	}
	if outcome.GameWon {
		g.state = model.GameStateEnded
		g.winner = outcome.Winner
	} else {
		g.state = model.GameStateAwaitingMove
	}

	g.logger.Debug("move committed",
		"from", g.Label(fromSq),
		"to", g.Label(toSq),
		"consumed", record.Consumed,
		"state", g.state)
	return true
}

func (g *Game) reject(from, to model.Square, reason string) bool {
	g.state = model.GameStateRejected
	g.logger.Debug("move rejected", "from", g.Label(from), "to", g.Label(to), "reason", reason)
	g.state = model.GameStateAwaitingMove
	return false
}

// fireMoveTriggers runs every trigger a move causes, in order: victim,
// capture, move, new threats, origin leave, destination step, proximity.
func (g *Game) fireMoveTriggers(ctx model.TriggerContext, before map[threatPair]bool) {
	mover := ctx.Mover
	alive := func() bool {
		_, ok := g.board.FindPiece(mover.ID)
		return ok
	}

	if ctx.Captured != nil {
		c := ctx
		g.runner.Execute(logic.PieceOwner(ctx.Captured), model.TriggerCaptured, &c, g.board)
		if alive() {
			c = ctx
			g.runner.Execute(logic.PieceOwner(mover), model.TriggerCapture, &c, g.board)
		}
	}
	if alive() {
		c := ctx
		g.runner.Execute(logic.PieceOwner(mover), model.TriggerMove, &c, g.board)
	}

	for _, pair := range g.newThreats(before) {
		attacker, ok := g.board.FindPiece(pair.attacker)
		if !ok {
			continue
		}
		target, ok := g.board.FindPiece(pair.target)
		if !ok {
			continue
		}
		c := model.TriggerContext{
			Mover:    mover,
			Attacker: attacker,
			Piece:    target,
			Square:   target.Position,
			Outcome:  ctx.Outcome,
		}
		g.runner.Execute(logic.PieceOwner(target), model.TriggerThreat, &c, g.board)
	}

	if g.board.SquareLogic(ctx.From) != nil {
		c := ctx
		c.Square = ctx.From
		g.runner.Execute(logic.SquareOwner(ctx.From), model.TriggerLeave, &c, g.board)
	}
	if !alive() {
		return
	}
	if g.board.SquareLogic(mover.Position) != nil {
		c := ctx
		c.Square = mover.Position
		g.runner.Execute(logic.SquareOwner(mover.Position), model.TriggerStep, &c, g.board)
	}
	for _, sq := range g.board.LogicSquares() {
		if !alive() {
			return
		}
		c := ctx
		c.Square = sq
		g.runner.Execute(logic.SquareOwner(sq), model.TriggerProximity, &c, g.board)
	}
}

// threats lists attacker/target pairs on the current board. Targets
// without on-threat logic are skipped.
func (g *Game) threats() map[threatPair]bool {
	out := make(map[threatPair]bool)
	for _, attacker := range g.board.Pieces() {
		for _, target := range g.board.PiecesOf(attacker.Color.Opponent()) {
			if len(target.Logic.Triggers(model.TriggerThreat)) == 0 {
				continue
			}
			if g.eval.CanAttack(attacker, target.Position, g.board) {
				out[threatPair{attacker: attacker.ID, target: target.ID}] = true
			}
		}
	}
	return out
}

// newThreats returns pairs present now that were absent before, in a
// stable order
func (g *Game) newThreats(before map[threatPair]bool) []threatPair {
	var out []threatPair
	for _, attacker := range g.board.Pieces() {
		for _, target := range g.board.PiecesOf(attacker.Color.Opponent()) {
			pair := threatPair{attacker: attacker.ID, target: target.ID}
			if before[pair] || len(target.Logic.Triggers(model.TriggerThreat)) == 0 {
				continue
			}
			if g.eval.CanAttack(attacker, target.Position, g.board) {
				out = append(out, pair)
			}
		}
	}
	return out
}

// promote replaces a pawn that reached the far rank
func (g *Game) promote(id model.PieceID, into string) bool {
	p, ok := g.board.FindPiece(id)
	if !ok || !strings.EqualFold(p.Type, "pawn") {
		return false
	}
	if !g.onLastRank(p) {
		return false
	}
	next, ok := g.Transform(p, into)
	if !ok {
		return false
	}
	sq := p.Position
	g.board.SetPiece(sq, next)
	g.emit(model.EffectEvent{Type: model.EffectEventTransformation, Square: sq, Label: g.Label(sq)})
	return true
}

// onLastRank reports whether p stands where it may promote. On square
// boards that is the far edge row. The hex board is centred on the
// origin, so there a pawn promotes when the next step forward leaves
// the active area.
func (g *Game) onLastRank(p *model.Piece) bool {
	c, err := g.adapter.StringToCoord(string(p.Position))
	if err != nil {
		return false
	}
	if g.adapter.Topology() == grid.TopologyHex {
		forward := -1
		if p.Color == model.Black {
			forward = 1
		}
		ahead := model.Square(g.adapter.CoordToString(grid.Coord{X: c.X, Y: c.Y + forward}))
		return !g.board.IsActive(ahead)
	}
	if p.Color == model.Black {
		return c.Y == g.board.Height-1
	}
	return c.Y == 0
}

// startTurn runs the turn lifecycle for every piece of side: cooldown
// tick, turn start, environment and variable checks. Only win flags
// raised here have any effect.
func (g *Game) startTurn(side model.Color, outcome *model.Outcome) {
	for _, p := range g.board.PiecesOf(side) {
		if _, ok := g.board.FindPiece(p.ID); !ok {
			continue
		}
		owner := logic.PieceOwner(p)
		lifecycle := &model.Outcome{}
		ctx := func() *model.TriggerContext {
			return &model.TriggerContext{Piece: p, Square: p.Position, Outcome: lifecycle}
		}

		if cd := p.Cooldown(); cd > 0 {
			p.Variables[model.CooldownVariable] = model.Number(float64(cd - 1))
			g.runner.Execute(owner, model.TriggerCooldownTick, ctx(), g.board)
			if cd-1 == 0 {
				g.runner.Execute(owner, model.TriggerCooldownEnd, ctx(), g.board)
			}
		}
		g.runner.Execute(owner, model.TriggerTurnStart, ctx(), g.board)

		env := ctx()
		env.IsAttacked = g.eval.IsAttacked(p.Position, side.Opponent(), g.board)
		g.runner.Execute(owner, model.TriggerEnvironment, env, g.board)
		g.runner.Execute(owner, model.TriggerVar, ctx(), g.board)

		if lifecycle.GameWon && !outcome.GameWon {
			outcome.GameWon = true
			outcome.Winner = lifecycle.Winner
		}
	}
}
