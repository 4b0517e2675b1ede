package rules

import (
	"strings"

	"github.com/mcoot/chesspie/internal/model"
)

func cond(v model.ConditionVar, op model.CompareOp, value float64) model.Condition {
	return model.Condition{Variable: v, Operator: op, Value: value}
}

func allow(mode model.TraversalMode, conds ...model.Condition) model.MoveRule {
	return model.MoveRule{Conditions: conds, Result: model.ResultAllow, Mode: mode}
}

// lines covers rook-like (orthogonal) movement
func lines() []model.MoveRule {
	return []model.MoveRule{
		allow(model.ModeSlide, cond(model.VarAbsDiffX, model.OpEq, 0), cond(model.VarAbsDiffY, model.OpGt, 0)),
		allow(model.ModeSlide, cond(model.VarAbsDiffY, model.OpEq, 0), cond(model.VarAbsDiffX, model.OpGt, 0)),
	}
}

var builtins = map[string]func() []model.MoveRule{
	"pawn": func() []model.MoveRule {
		return []model.MoveRule{
			allow(model.ModeSlide,
				cond(model.VarDiffY, model.OpEq, 1), cond(model.VarAbsDiffX, model.OpEq, 0), cond(model.VarCapture, model.OpEq, 0)),
			allow(model.ModeSlide,
				cond(model.VarDiffY, model.OpEq, 2), cond(model.VarAbsDiffX, model.OpEq, 0),
				cond(model.VarHasMoved, model.OpEq, 0), cond(model.VarCapture, model.OpEq, 0)),
			allow(model.ModeJump,
				cond(model.VarDiffY, model.OpEq, 1), cond(model.VarAbsDiffX, model.OpEq, 1), cond(model.VarCapture, model.OpEq, 1)),
		}
	},
	"knight": func() []model.MoveRule {
		return []model.MoveRule{
			allow(model.ModeJump, cond(model.VarAbsDiffX, model.OpEq, 1), cond(model.VarAbsDiffY, model.OpEq, 2)),
			allow(model.ModeJump, cond(model.VarAbsDiffX, model.OpEq, 2), cond(model.VarAbsDiffY, model.OpEq, 1)),
		}
	},
	"bishop": func() []model.MoveRule { return bishop() },
	"rook":   lines,
	"queen": func() []model.MoveRule {
		return append(lines(), bishop()...)
	},
	"king": func() []model.MoveRule {
		return []model.MoveRule{
			allow(model.ModeJump, cond(model.VarAbsDiffX, model.OpLte, 1), cond(model.VarAbsDiffY, model.OpLte, 1)),
		}
	},
}

// bishop matches |dx| == |dy| > 0 by enumerating both diagonals through
// the dx/dy selectors, since conditions compare against literals only.
func bishop() []model.MoveRule {
	var out []model.MoveRule
	for n := 1; n < maxBuiltinRange; n++ {
		out = append(out, allow(model.ModeSlide,
			cond(model.VarAbsDiffX, model.OpEq, float64(n)), cond(model.VarAbsDiffY, model.OpEq, float64(n))))
	}
	return out
}

// maxBuiltinRange bounds diagonal enumeration for built-in sliders
const maxBuiltinRange = 32

// Builtin returns the rule list for a standard piece type, matched
// case-insensitively. Unknown types return nil.
func Builtin(pieceType string) []model.MoveRule {
	fn, ok := builtins[strings.ToLower(strings.TrimSpace(pieceType))]
	if !ok {
		return nil
	}
	return fn()
}

// IsBuiltin reports whether pieceType is a standard piece type
func IsBuiltin(pieceType string) bool {
	_, ok := builtins[strings.ToLower(strings.TrimSpace(pieceType))]
	return ok
}
