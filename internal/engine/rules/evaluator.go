// Package rules decides whether a piece may move between two squares
// under its authored movement rules.
package rules

import (
	"github.com/mcoot/chesspie/internal/grid"
	"github.com/mcoot/chesspie/internal/model"
)

// Evaluator checks moves against MoveRule lists for one grid topology
type Evaluator struct {
	adapter grid.Adapter
}

// New creates an evaluator for the given adapter
func New(adapter grid.Adapter) *Evaluator {
	return &Evaluator{adapter: adapter}
}

// delta is a candidate move expressed relative to the mover
type delta struct {
	from, to grid.Coord
	dx, dy   int // dy is forward-relative for the mover's colour
	rawDY    int
	capture  bool
}

// IsLegal reports whether piece may move from -> to on board. Rules are
// consulted in order and the first fully satisfied rule decides; a
// slide rule whose path is blocked is not satisfied. No matching rule
// means the move is illegal.
func (e *Evaluator) IsLegal(piece *model.Piece, from, to model.Square, board *model.Board) bool {
	if piece == nil || from == to || !board.IsActive(to) {
		return false
	}
	if piece.Cooldown() > 0 {
		return false
	}
	target := board.Piece(to)
	if target != nil && target.Color == piece.Color {
		return false
	}

	d, ok := e.delta(piece, from, to)
	if !ok {
		return false
	}
	d.capture = target != nil

	for _, rule := range piece.Rules {
		if !e.satisfied(rule.Conditions, piece, d) {
			continue
		}
		if rule.Result == model.ResultDisallow {
			return false
		}
		if rule.Mode == model.ModeSlide && !e.pathClear(d, board) {
			continue
		}
		return true
	}
	return false
}

// CanAttack reports whether piece could capture an enemy standing on
// target. The target square need not actually hold an enemy.
func (e *Evaluator) CanAttack(piece *model.Piece, target model.Square, board *model.Board) bool {
	if piece == nil || piece.Position == target || !board.IsActive(target) {
		return false
	}
	occupant := board.Piece(target)
	if occupant != nil && occupant.Color == piece.Color {
		return false
	}
	if occupant != nil {
		return e.IsLegal(piece, piece.Position, target, board)
	}
	// Evaluate as if an enemy stood there so capture-only rules apply
	probe := board.Clone()
	probe.SetPiece(target, &model.Piece{ID: "probe", Color: piece.Color.Opponent()})
	return e.IsLegal(piece, piece.Position, target, probe)
}

// IsAttacked reports whether any piece of by can attack sq
func (e *Evaluator) IsAttacked(sq model.Square, by model.Color, board *model.Board) bool {
	for _, p := range board.PiecesOf(by) {
		if e.CanAttack(p, sq, board) {
			return true
		}
	}
	return false
}

// LegalMoves lists every destination the piece on from may move to
func (e *Evaluator) LegalMoves(from model.Square, board *model.Board) []model.Square {
	piece := board.Piece(from)
	if piece == nil {
		return nil
	}
	var out []model.Square
	for _, sq := range board.ActiveSquares() {
		if e.IsLegal(piece, from, sq, board) {
			out = append(out, sq)
		}
	}
	return out
}

func (e *Evaluator) delta(piece *model.Piece, from, to model.Square) (delta, bool) {
	fc, err := e.adapter.StringToCoord(string(from))
	if err != nil {
		return delta{}, false
	}
	tc, err := e.adapter.StringToCoord(string(to))
	if err != nil {
		return delta{}, false
	}
	d := delta{from: fc, to: tc, dx: tc.X - fc.X, rawDY: tc.Y - fc.Y}
	// y grows away from white's home side on both topologies
	if piece.Color == model.White {
		d.dy = -d.rawDY
	} else {
		d.dy = d.rawDY
	}
	return d, true
}

// satisfied evaluates a condition chain left to right. Each condition is
// joined to the partial result by its own connective (AND when unset);
// the first condition seeds the chain.
func (e *Evaluator) satisfied(conds []model.Condition, piece *model.Piece, d delta) bool {
	if len(conds) == 0 {
		return true
	}
	result := e.check(conds[0], piece, d)
	for i := 1; i < len(conds); i++ {
		ok := e.check(conds[i], piece, d)
		if conds[i].Logic == model.ConnOr {
			result = result || ok
		} else {
			result = result && ok
		}
	}
	return result
}

func (e *Evaluator) check(c model.Condition, piece *model.Piece, d delta) bool {
	return c.Operator.Compare(e.selector(c.Variable, piece, d), c.Value)
}

func (e *Evaluator) selector(v model.ConditionVar, piece *model.Piece, d delta) float64 {
	switch v {
	case model.VarDiffX:
		return float64(d.dx)
	case model.VarDiffY:
		return float64(d.dy)
	case model.VarAbsDiffX:
		return float64(abs(d.dx))
	case model.VarAbsDiffY:
		return float64(abs(d.dy))
	case model.VarDist:
		return float64(e.adapter.Distance(d.from, d.to))
	case model.VarCapture:
		return boolNum(d.capture)
	case model.VarHasMoved:
		return boolNum(piece.HasMoved)
	default:
		n, _ := piece.Variables.Get(string(v)).AsNumber()
		return n
	}
}

// pathClear walks gcd(|dx|,|dy|) equal steps between the endpoints.
// Occupied or inactive intermediate squares block.
func (e *Evaluator) pathClear(d delta, board *model.Board) bool {
	rdx, rdy := d.to.X-d.from.X, d.to.Y-d.from.Y
	steps := gcd(abs(rdx), abs(rdy))
	if steps <= 1 {
		return true
	}
	step := grid.Coord{X: rdx / steps, Y: rdy / steps}
	at := d.from
	for i := 1; i < steps; i++ {
		at = at.Add(step)
		sq := model.Square(e.adapter.CoordToString(at))
		if !board.IsActive(sq) || board.Piece(sq) != nil {
			return false
		}
	}
	return true
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func boolNum(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
