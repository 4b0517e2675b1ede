package summary

import (
	"strings"

	"github.com/mcoot/chesspie/internal/model"
)

// ValueVariable is the piece variable custom pieces declare their
// material value in
const ValueVariable = "value"

// standard material values for built-in types
var standardValues = map[string]int{
	"pawn":   1,
	"knight": 3,
	"bishop": 3,
	"rook":   5,
	"queen":  9,
	"king":   0,
}

// Service computes material and result summaries for games
type Service struct{}

// New creates a new summary Service
func New() *Service {
	return &Service{}
}

// PieceValue returns the material value of a piece. A numeric "value"
// variable overrides the standard table; unknown types are worth 0.
func (s *Service) PieceValue(p model.PieceView) int {
	if v, ok := p.Variables[ValueVariable]; ok {
		if n, isNum := v.AsNumber(); isNum {
			return int(n)
		}
	}
	for _, name := range []string{p.Type, p.Name} {
		if v, ok := standardValues[strings.ToLower(name)]; ok {
			return v
		}
	}
	return 0
}

// Summarize reports material on the board, captures per side and the
// result so far
func (s *Service) Summarize(view *model.GameView) *model.Summary {
	sum := &model.Summary{
		GameID:     view.ID,
		State:      view.State,
		Winner:     view.Winner,
		Result:     Result(view.State, view.Winner),
		Material:   map[model.Color]int{model.White: 0, model.Black: 0},
		PieceCount: map[model.Color]int{model.White: 0, model.Black: 0},
		Captures:   map[model.Color]int{model.White: 0, model.Black: 0},
		MoveCount:  len(view.Moves),
	}
	for _, p := range view.Pieces {
		sum.Material[p.Color] += s.PieceValue(p)
		sum.PieceCount[p.Color]++
	}
	for _, m := range view.Moves {
		if m.Captured != "" {
			sum.Captures[m.Color]++
		}
	}
	return sum
}

// Result describes the outcome in words
func Result(state model.GameState, winner model.Color) string {
	if state != model.GameStateEnded {
		return "in progress"
	}
	switch winner {
	case model.White:
		return "white wins"
	case model.Black:
		return "black wins"
	default:
		return "draw"
	}
}

// MaterialLeader returns the side ahead on material, or "" when level
func (s *Service) MaterialLeader(sum *model.Summary) model.Color {
	w, b := sum.Material[model.White], sum.Material[model.Black]
	switch {
	case w > b:
		return model.White
	case b > w:
		return model.Black
	default:
		return ""
	}
}
