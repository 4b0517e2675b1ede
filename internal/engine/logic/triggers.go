package logic

import (
	"strings"

	"github.com/mcoot/chesspie/internal/model"
)

// Environment conditions understood by on-environment
const (
	envWhiteSquare = "white square"
	envBlackSquare = "black square"
	envIsAttacked  = "is attacked"
)

// matches evaluates a trigger's predicate against the event
func (r *Runner) matches(owner Owner, trigger model.TriggerType, vals model.Resolved, ctx *model.TriggerContext, board *model.Board) bool {
	switch trigger {
	case model.TriggerCapture, model.TriggerCaptured:
		return r.matchCapture(owner, vals, ctx)

	case model.TriggerThreat:
		return ctx.Attacker != nil && ctx.Attacker.Matches(vals.Str("by"))

	case model.TriggerEnvironment:
		return r.matchEnvironment(owner, vals, ctx)

	case model.TriggerVar:
		_, vars := r.graph(owner, board)
		return matchVar(vals, vars)

	case model.TriggerStep, model.TriggerLeave:
		return ctx.Piece != nil &&
			ctx.Piece.Matches(vals.Str("pieceType")) &&
			matchColor(ctx.Piece, vals.Str("pieceColor"))

	case model.TriggerProximity:
		return r.matchProximity(owner, vals, ctx)

	default:
		return true
	}
}

// matchCapture serves both sides of a capture. The victim checks the
// attacker's type and the attacker checks the victim's.
func (r *Runner) matchCapture(owner Owner, vals model.Resolved, ctx *model.TriggerContext) bool {
	self := owner.piece
	if self == nil {
		return false
	}
	by := vals.Str("by")
	if ctx.Attacker != nil && ctx.Attacker.ID != self.ID {
		return ctx.Attacker.Matches(by)
	}
	if ctx.Captured != nil && ctx.Captured.ID != self.ID {
		return ctx.Captured.Matches(by)
	}
	return false
}

func (r *Runner) matchEnvironment(owner Owner, vals model.Resolved, ctx *model.TriggerContext) bool {
	condition := strings.ToLower(strings.TrimSpace(vals.Str("condition")))
	switch condition {
	case envWhiteSquare, envBlackSquare:
		if owner.piece == nil {
			return false
		}
		c, err := r.adapter.StringToCoord(string(owner.piece.Position))
		if err != nil {
			return false
		}
		light := (c.X+c.Y)%2 == 0
		return light == (condition == envWhiteSquare)
	case envIsAttacked:
		return ctx.IsAttacked
	default:
		return true
	}
}

// matchVar compares a named variable against a value. Both sides are
// compared numerically when they parse as numbers, lexically otherwise.
func matchVar(vals model.Resolved, vars model.Variables) bool {
	name := vals.Str("varName")
	if name == "" {
		return false
	}
	op := model.CompareOp(strings.TrimSpace(vals.Str("op")))
	if op == "" {
		op = model.OpEq
	}
	current := vars.Get(name)
	want, ok := vals["value"]
	if !ok {
		want = model.Number(0)
	}

	c, cNum := current.AsNumber()
	w, wNum := want.AsNumber()
	if cNum && wNum {
		return op.Compare(c, w)
	}
	return op.CompareText(current.String(), want.String())
}

func matchColor(p *model.Piece, expected string) bool {
	expected = strings.TrimSpace(expected)
	if expected == "" || strings.EqualFold(expected, "any") {
		return true
	}
	return strings.EqualFold(string(p.Color), expected)
}

func (r *Runner) matchProximity(owner Owner, vals model.Resolved, ctx *model.TriggerContext) bool {
	if ctx.Piece == nil || owner.square == "" {
		return false
	}
	pc, err := r.adapter.StringToCoord(string(ctx.Piece.Position))
	if err != nil {
		return false
	}
	sc, err := r.adapter.StringToCoord(string(owner.square))
	if err != nil {
		return false
	}
	threshold := 1.0
	if v, ok := vals["distance"]; ok {
		if n, isNum := v.AsNumber(); isNum {
			threshold = n
		}
	}
	return float64(r.adapter.Distance(pc, sc)) <= threshold &&
		ctx.Piece.Matches(vals.Str("pieceType"))
}
