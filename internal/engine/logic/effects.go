package logic

import (
	"strings"

	"github.com/mcoot/chesspie/internal/grid"
	"github.com/mcoot/chesspie/internal/model"
)

// apply executes one effect block
func (r *Runner) apply(owner Owner, block model.LogicBlock, vals model.Resolved, ctx *model.TriggerContext, board *model.Board) {
	switch model.EffectType(block.Type) {
	case model.EffectKill:
		r.kill(owner, vals, ctx, board)
	case model.EffectTransformation:
		r.transform(owner, vals, board)
	case model.EffectModifyVar:
		r.modifyVar(owner, vals, ctx, board)
	case model.EffectCooldown:
		r.cooldown(owner, vals)
	case model.EffectPrevent:
		ctx.Outcome.Prevented = true
		ctx.Outcome.MovePrevented = true
		ctx.Outcome.CapturePrevented = true
	case model.EffectTeleport:
		r.teleport(owner, vals, ctx, board)
	case model.EffectDisableSquare:
		r.setSquareActive(owner, vals, board, false)
	case model.EffectEnableSquare:
		r.setSquareActive(owner, vals, board, true)
	case model.EffectWin:
		r.win(owner, vals, ctx, board)
	default:
		r.logger.Debug("ignoring unknown effect", "effect", block.Type, "block", block.InstanceID)
	}
}

// subject is the piece an effect acts on by default: the stepping piece
// for square logic, the owner itself for piece logic.
func subject(owner Owner, ctx *model.TriggerContext) *model.Piece {
	if owner.piece != nil {
		return owner.piece
	}
	return ctx.Piece
}

func (r *Runner) kill(owner Owner, vals model.Resolved, ctx *model.TriggerContext, board *model.Board) {
	target := subject(owner, ctx)
	if owner.piece != nil {
		switch strings.ToLower(vals.Str("target")) {
		case "attacker":
			target = ctx.Attacker
		case "victim":
			target = ctx.Captured
		}
	}
	if target == nil {
		return
	}
	sq := target.Position
	on := board.Piece(sq)
	if on == nil || on.ID != target.ID {
		return
	}
	board.SetPiece(sq, nil)
	r.emit(model.EffectEventKill, sq, board)

	if (ctx.Mover != nil && target.ID == ctx.Mover.ID) ||
		(ctx.Attacker != nil && target.ID == ctx.Attacker.ID) {
		ctx.Outcome.MovePrevented = true
	}
}

func (r *Runner) transform(owner Owner, vals model.Resolved, board *model.Board) {
	p := owner.piece
	into := strings.TrimSpace(vals.Str("target"))
	if p == nil || into == "" || r.transformer == nil {
		return
	}
	sq := p.Position
	if on := board.Piece(sq); on == nil || on.ID != p.ID {
		return
	}
	next, ok := r.transformer.Transform(p, into)
	if !ok {
		r.logger.Debug("transformation target not found", "piece", p.ID, "target", into)
		return
	}
	board.SetPiece(sq, next)
	r.emit(model.EffectEventTransformation, sq, board)
}

// modifyVar applies +=, -= or = to a variable on the owner and fires
// on-var for the owner with the same context.
func (r *Runner) modifyVar(owner Owner, vals model.Resolved, ctx *model.TriggerContext, board *model.Board) {
	name := vals.Str("varName")
	op := strings.TrimSpace(vals.Str("op"))
	value, ok := vals["value"]
	if name == "" || op == "" || !ok {
		return
	}
	_, vars := r.graph(owner, board)
	if vars == nil {
		return
	}

	if n, isNum := value.AsNumber(); isNum {
		current, _ := vars.Get(name).AsNumber()
		switch op {
		case "+=":
			current += n
		case "-=":
			current -= n
		case "=":
			current = n
		default:
			return
		}
		vars[name] = model.Number(current)
	} else if op == "=" {
		vars[name] = value
	} else {
		return
	}

	next := ctx.WithVariable(name)
	r.Execute(owner, model.TriggerVar, &next, board)
}

func (r *Runner) cooldown(owner Owner, vals model.Resolved) {
	p := owner.piece
	if p == nil {
		return
	}
	d, ok := vals["duration"]
	if !ok {
		return
	}
	n, isNum := d.AsNumber()
	if !isNum || n <= 0 {
		return
	}
	if p.Variables == nil {
		p.Variables = model.Variables{}
	}
	p.Variables[model.CooldownVariable] = model.Number(n)
}

func (r *Runner) teleport(owner Owner, vals model.Resolved, ctx *model.TriggerContext, board *model.Board) {
	p := subject(owner, ctx)
	raw := strings.TrimSpace(vals.Str("targetSquare"))
	if p == nil || raw == "" {
		return
	}
	key, err := grid.Normalize(r.adapter, raw, board.Height)
	if err != nil {
		return
	}
	target := model.Square(key)
	if !board.IsActive(target) || board.Piece(target) != nil {
		return
	}
	if on := board.Piece(p.Position); on == nil || on.ID != p.ID {
		return
	}
	board.SetPiece(p.Position, nil)
	board.SetPiece(target, p)
	r.emit(model.EffectEventTeleport, target, board)
}

// setSquareActive toggles the square named by the "square" socket, or
// the owning square.
func (r *Runner) setSquareActive(owner Owner, vals model.Resolved, board *model.Board, active bool) {
	sq := owner.square
	if raw := strings.TrimSpace(vals.Str("square")); raw != "" {
		key, err := grid.Normalize(r.adapter, raw, board.Height)
		if err != nil {
			return
		}
		sq = model.Square(key)
	}
	if sq == "" || !board.SetActive(sq, active) {
		return
	}
	if active {
		r.emit(model.EffectEventEnableSquare, sq, board)
	} else {
		r.emit(model.EffectEventDisableSquare, sq, board)
	}
}

func (r *Runner) win(owner Owner, vals model.Resolved, ctx *model.TriggerContext, board *model.Board) {
	p := subject(owner, ctx)
	var winner model.Color
	switch strings.ToLower(vals.Str("side")) {
	case "white":
		winner = model.White
	case "black":
		winner = model.Black
	default:
		if p == nil {
			return
		}
		winner = p.Color
	}
	ctx.Outcome.GameWon = true
	ctx.Outcome.Winner = winner

	sq := owner.square
	if sq == "" && p != nil {
		sq = p.Position
	}
	r.emit(model.EffectEventWin, sq, board)
}
