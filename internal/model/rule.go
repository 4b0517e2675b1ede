package model

import (
	"encoding/json"
	"strings"
)

// ConditionVar selects the quantity a condition compares
type ConditionVar string

const (
	VarDiffX    ConditionVar = "diffX"
	VarDiffY    ConditionVar = "diffY"
	VarAbsDiffX ConditionVar = "absDiffX"
	VarAbsDiffY ConditionVar = "absDiffY"
	VarDist     ConditionVar = "dist"
	VarCapture  ConditionVar = "isCapture"
	VarHasMoved ConditionVar = "hasMoved"
)

// CompareOp is a condition comparison operator
type CompareOp string

const (
	OpEq  CompareOp = "==="
	OpNe  CompareOp = "!="
	OpGt  CompareOp = ">"
	OpLt  CompareOp = "<"
	OpGte CompareOp = ">="
	OpLte CompareOp = "<="
)

// Compare applies the operator to two numbers. Unknown operators are false.
func (op CompareOp) Compare(left, right float64) bool {
	switch op {
	case OpEq, "==":
		return left == right
	case OpNe:
		return left != right
	case OpGt:
		return left > right
	case OpLt:
		return left < right
	case OpGte:
		return left >= right
	case OpLte:
		return left <= right
	default:
		return false
	}
}

// CompareText applies the operator lexically
func (op CompareOp) CompareText(left, right string) bool {
	c := strings.Compare(left, right)
	switch op {
	case OpEq, "==":
		return c == 0
	case OpNe:
		return c != 0
	case OpGt:
		return c > 0
	case OpLt:
		return c < 0
	case OpGte:
		return c >= 0
	case OpLte:
		return c <= 0
	default:
		return false
	}
}

// Connective links a condition to the partial result before it
type Connective string

const (
	ConnAnd Connective = "AND"
	ConnOr  Connective = "OR"
)

// Condition is one link in a rule's left-to-right condition chain.
// Logic joins this condition to the partial result of the conditions
// before it and is ignored on the first condition. The authoring format
// stores each connective on the condition before the one it joins;
// MoveRule's JSON methods shift between the two.
type Condition struct {
	Variable ConditionVar `json:"variable"`
	Operator CompareOp    `json:"operator"`
	Value    float64      `json:"value"`
	Logic    Connective   `json:"logic,omitempty"`
}

// RuleResult is a rule's polarity
type RuleResult string

const (
	ResultAllow    RuleResult = "allow"
	ResultDisallow RuleResult = "disallow"
)

// TraversalMode controls whether intervening occupancy blocks a move
type TraversalMode string

const (
	ModeSlide TraversalMode = "slide"
	ModeJump  TraversalMode = "jump"
)

// MoveRule is one authored movement rule
type MoveRule struct {
	Conditions []Condition   `json:"conditions"`
	Result     RuleResult    `json:"result"`
	Mode       TraversalMode `json:"type"`
}

func (r *MoveRule) UnmarshalJSON(data []byte) error {
	type rawRule MoveRule
	var raw rawRule
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = MoveRule(raw)
	switch strings.ToLower(string(r.Mode)) {
	case "slide", "run", "running":
		r.Mode = ModeSlide
	default:
		r.Mode = ModeJump
	}
	if !strings.EqualFold(string(r.Result), string(ResultDisallow)) {
		r.Result = ResultAllow
	} else {
		r.Result = ResultDisallow
	}
	r.Conditions = shiftConnectives(r.Conditions, 1)
	return nil
}

func (r MoveRule) MarshalJSON() ([]byte, error) {
	type rawRule MoveRule
	raw := rawRule(r)
	raw.Conditions = shiftConnectives(r.Conditions, -1)
	return json.Marshal(raw)
}

// shiftConnectives moves every connective by one condition: forward (+1)
// when ingesting the authoring format, back (-1) when writing it. The
// connective that falls off the end is dropped.
func shiftConnectives(conds []Condition, dir int) []Condition {
	if len(conds) == 0 {
		return conds
	}
	out := make([]Condition, len(conds))
	copy(out, conds)
	for i := range out {
		src := i - dir
		if src >= 0 && src < len(conds) {
			out[i].Logic = conds[src].Logic
		} else {
			out[i].Logic = ""
		}
	}
	return out
}

// CloneRules returns an independent copy of a rule list
func CloneRules(rules []MoveRule) []MoveRule {
	if rules == nil {
		return nil
	}
	out := make([]MoveRule, len(rules))
	for i, r := range rules {
		out[i] = MoveRule{
			Conditions: append([]Condition(nil), r.Conditions...),
			Result:     r.Result,
			Mode:       r.Mode,
		}
	}
	return out
}
