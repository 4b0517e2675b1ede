package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"unicode"

	"github.com/mcoot/chesspie/internal/api/response"
	"github.com/mcoot/chesspie/internal/grid"
	"github.com/mcoot/chesspie/internal/model"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to stdout
func NewOutput(format string) *Output {
	return &Output{format: format, w: os.Stdout}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case model.GameView:
		o.printGame(v)
	case model.MoveResult:
		o.printMoveResult(v)
	case model.Summary:
		o.printSummary(v)
	case response.GameList:
		o.printGameList(v)
	case response.LegalMoves:
		o.printLegalMoves(v)
	case response.PieceList:
		o.printPieceList(v)
	case response.PiecesSaved:
		fmt.Fprintf(o.w, "Saved %d piece definitions (%d in library)\n", v.Saved, v.Total)
	case model.PieceDefinition:
		o.printPieceDefinition(v)
	case response.Health:
		fmt.Fprintf(o.w, "Status: %s\n", v.Status)
		fmt.Fprintf(o.w, "Pieces: %d\n", v.PieceCount)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// pieceGlyph is the single-character board symbol for a piece: white
// upper case, black lower case
func pieceGlyph(p model.PieceView) string {
	name := p.Type
	if p.Custom && p.Name != "" {
		name = p.Name
	}
	var r rune = '?'
	if strings.EqualFold(name, "knight") {
		r = 'n'
	} else {
		for _, c := range name {
			r = unicode.ToLower(c)
			break
		}
	}
	if p.Color == model.White {
		r = unicode.ToUpper(r)
	}
	return string(r)
}

func (o *Output) printGame(g model.GameView) {
	if g.ID != "" {
		fmt.Fprintf(o.w, "Game: %s\n", g.ID)
	}
	fmt.Fprintf(o.w, "State: %s\n", g.State)
	if g.State == model.GameStateEnded {
		if g.Winner != "" {
			fmt.Fprintf(o.w, "Winner: %s\n", g.Winner)
		} else {
			fmt.Fprintln(o.w, "Result: draw")
		}
	} else {
		fmt.Fprintf(o.w, "Turn: %s\n", g.Turn)
	}

	if g.Topology == "" || g.Topology == string(grid.TopologySquare) {
		fmt.Fprintln(o.w)
		o.printBoard(g)
	} else {
		fmt.Fprintf(o.w, "Grid: %s %dx%d\n", g.Topology, g.Rows, g.Cols)
		fmt.Fprintln(o.w, "Pieces:")
		for _, p := range g.Pieces {
			fmt.Fprintf(o.w, "  %s %s %s\n", p.Label, p.Color, p.Type)
		}
	}

	if len(g.Moves) > 0 {
		fmt.Fprintln(o.w, "\nMoves:")
		for i, m := range g.Moves {
			fmt.Fprintf(o.w, "  %d. %s\n", i+1, formatMove(m))
		}
	}
}

func formatMove(m model.MoveView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s %s-%s", m.Color, m.PieceType, m.FromLabel, m.ToLabel)
	if m.Captured != "" {
		fmt.Fprintf(&b, " x%s", m.Captured)
	}
	if m.Promotion != "" {
		fmt.Fprintf(&b, " =%s", m.Promotion)
	}
	if m.Consumed {
		b.WriteString(" (consumed)")
	}
	return b.String()
}

func (o *Output) printBoard(g model.GameView) {
	active := make(map[string]bool, len(g.Active))
	for _, label := range g.Active {
		active[label] = true
	}
	pieces := make(map[string]string, len(g.Pieces))
	for _, p := range g.Pieces {
		pieces[p.Label] = pieceGlyph(p)
	}

	for y := 0; y < g.Rows; y++ {
		fmt.Fprintf(o.w, "%3d |", g.Rows-y)
		for x := 0; x < g.Cols; x++ {
			label, _ := grid.ToAlgebraic(grid.Coord{X: x, Y: y}, g.Rows)
			switch {
			case !active[label]:
				fmt.Fprint(o.w, "   ")
			case pieces[label] != "":
				fmt.Fprintf(o.w, " %s ", pieces[label])
			default:
				fmt.Fprint(o.w, " . ")
			}
		}
		fmt.Fprintln(o.w, "|")
	}

	fmt.Fprint(o.w, "     ")
	for x := 0; x < g.Cols; x++ {
		fmt.Fprintf(o.w, " %c ", 'a'+rune(x))
	}
	fmt.Fprintln(o.w)
}

func (o *Output) printMoveResult(r model.MoveResult) {
	fmt.Fprintf(o.w, "Move: %s\n", formatMove(r.Move))
	for _, e := range r.Effects {
		fmt.Fprintf(o.w, "Effect: %s at %s\n", e.Type, e.Label)
	}
	if r.Game != nil {
		o.printGame(*r.Game)
	}
}

func (o *Output) printSummary(s model.Summary) {
	fmt.Fprintf(o.w, "Game: %s\n", s.GameID)
	fmt.Fprintf(o.w, "Result: %s\n", s.Result)
	fmt.Fprintf(o.w, "Moves: %d\n", s.MoveCount)
	for _, c := range []model.Color{model.White, model.Black} {
		fmt.Fprintf(o.w, "%s: material %d, pieces %d, captures %d\n",
			c, s.Material[c], s.PieceCount[c], s.Captures[c])
	}
}

func (o *Output) printGameList(l response.GameList) {
	if len(l.Games) == 0 {
		fmt.Fprintln(o.w, "No games")
		return
	}
	for _, g := range l.Games {
		fmt.Fprintf(o.w, "%s  %-14s %3d moves  %s\n",
			g.ID, g.State, g.MoveCount, g.UpdatedAt.Format("2006-01-02 15:04:05"))
	}
}

func (o *Output) printLegalMoves(m response.LegalMoves) {
	if len(m.Moves) == 0 {
		fmt.Fprintf(o.w, "No legal moves from %s\n", m.From)
		return
	}
	moves := append([]string(nil), m.Moves...)
	sort.Strings(moves)
	fmt.Fprintf(o.w, "%s: %s\n", m.From, strings.Join(moves, " "))
}

func (o *Output) printPieceList(l response.PieceList) {
	if len(l.Pieces) == 0 {
		fmt.Fprintln(o.w, "Piece library is empty")
		return
	}
	for _, p := range l.Pieces {
		fmt.Fprintf(o.w, "%-16s %-16s %d rules\n", p.Key(), p.Name, len(p.RulesFor(model.White)))
	}
}

func (o *Output) printPieceDefinition(p model.PieceDefinition) {
	fmt.Fprintf(o.w, "Piece: %s (%s)\n", p.Name, p.Key())
	for _, c := range []model.Color{model.White, model.Black} {
		rules := p.RulesFor(c)
		fmt.Fprintf(o.w, "%s rules: %d\n", c, len(rules))
		for _, r := range rules {
			conds := make([]string, 0, len(r.Conditions))
			for _, cond := range r.Conditions {
				conds = append(conds, fmt.Sprintf("%s %s %g", cond.Variable, cond.Operator, cond.Value))
			}
			fmt.Fprintf(o.w, "  %s %s: %s\n", r.Result, r.Mode, strings.Join(conds, ", "))
		}
	}
	if len(p.Variables) > 0 {
		names := make([]string, 0, len(p.Variables))
		for name := range p.Variables {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Fprintf(o.w, "Variables: %s\n", strings.Join(names, ", "))
	}
}
