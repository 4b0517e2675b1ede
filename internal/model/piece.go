package model

import (
	"fmt"
	"strings"
)

// Color is one of the two sides
type Color string

const (
	White Color = "white"
	Black Color = "black"
)

// Opponent returns the other side
func (c Color) Opponent() Color {
	if c == White {
		return Black
	}
	return White
}

// Valid reports whether c names a side
func (c Color) Valid() bool {
	return c == White || c == Black
}

// Square is a canonical square key ("x,y")
type Square string

// PieceID identifies a piece within one game session
type PieceID string

// PrototypeID indexes a PrototypeTable. NoPrototype marks built-in pieces.
type PrototypeID int

const NoPrototype PrototypeID = -1

// Piece is a live piece instance on a board
type Piece struct {
	ID        PieceID
	Type      string
	Name      string
	Color     Color
	Position  Square
	Rules     []MoveRule
	Logic     LogicGraph
	Variables Variables
	Custom    bool
	HasMoved  bool
	Prototype PrototypeID
}

// Clone returns a deep copy
func (p *Piece) Clone() *Piece {
	if p == nil {
		return nil
	}
	c := *p
	c.Rules = CloneRules(p.Rules)
	c.Logic = p.Logic.Clone()
	c.Variables = p.Variables.Clone()
	return &c
}

// Cooldown returns the number of turns the piece is still frozen for
func (p *Piece) Cooldown() int {
	n, _ := p.Variables.Get(CooldownVariable).AsNumber()
	return int(n)
}

// CooldownVariable is the variable cooldown effects write to
const CooldownVariable = "cooldown"

// Matches reports whether the piece answers to an authored type filter.
// Empty and "Any" match every piece; otherwise the filter is compared
// case-insensitively against the type and name, and a filter followed by
// an underscore matches any type with that prefix.
func (p *Piece) Matches(filter string) bool {
	filter = strings.TrimSpace(filter)
	if filter == "" || strings.EqualFold(filter, "any") {
		return true
	}
	f := strings.ToLower(filter)
	for _, candidate := range []string{p.Type, p.Name} {
		c := strings.ToLower(candidate)
		if c == "" {
			continue
		}
		if c == f || strings.HasPrefix(c, f+"_") {
			return true
		}
	}
	return false
}

// PieceDefinition is an authored piece prototype
type PieceDefinition struct {
	ID        string               `json:"id"`
	Name      string               `json:"name"`
	Rules     map[Color][]MoveRule `json:"moves,omitempty"`
	Logic     LogicGraph           `json:"logic,omitempty"`
	Variables Variables            `json:"variables,omitempty"`
}

// Key is the lowercase identifier a definition is stored under: its id,
// or its name when the id is blank.
func (d *PieceDefinition) Key() string {
	if key := PieceKey(d.ID); key != "" {
		return key
	}
	return PieceKey(d.Name)
}

// PieceKey normalizes a piece reference for lookup
func PieceKey(ref string) string {
	return strings.ToLower(strings.TrimSpace(ref))
}

// Validate checks a definition can be stored and referenced
func (d *PieceDefinition) Validate() error {
	if d.Key() == "" {
		return fmt.Errorf("%w: id or name is required", ErrInvalidPieceDefinition)
	}
	for c := range d.Rules {
		if !c.Valid() {
			return fmt.Errorf("%w: %q moves: %w %q", ErrInvalidPieceDefinition, d.Key(), ErrInvalidColor, c)
		}
	}
	return nil
}

// RulesFor returns the rule list for a side. A definition with a single
// unkeyed side shares it with the other.
func (d *PieceDefinition) RulesFor(c Color) []MoveRule {
	if rules, ok := d.Rules[c]; ok {
		return rules
	}
	return d.Rules[c.Opponent()]
}

// PrototypeTable is an arena of piece definitions. Lookups by id or name
// happen once when a board is built; pieces keep the resulting index.
type PrototypeTable struct {
	defs  []PieceDefinition
	index map[string]PrototypeID
}

// NewPrototypeTable registers defs in order. Later duplicates of an id or
// name do not replace earlier ones.
func NewPrototypeTable(defs []PieceDefinition) *PrototypeTable {
	t := &PrototypeTable{index: make(map[string]PrototypeID)}
	for _, d := range defs {
		id := PrototypeID(len(t.defs))
		t.defs = append(t.defs, d)
		for _, key := range []string{d.ID, d.Name} {
			k := strings.ToLower(strings.TrimSpace(key))
			if k == "" {
				continue
			}
			if _, exists := t.index[k]; !exists {
				t.index[k] = id
			}
		}
	}
	return t
}

// Resolve maps an id or display name to a prototype index
func (t *PrototypeTable) Resolve(ref string) (PrototypeID, bool) {
	if t == nil {
		return NoPrototype, false
	}
	id, ok := t.index[strings.ToLower(strings.TrimSpace(ref))]
	if !ok {
		return NoPrototype, false
	}
	return id, true
}

// Get returns the definition at id
func (t *PrototypeTable) Get(id PrototypeID) (*PieceDefinition, bool) {
	if t == nil || id < 0 || int(id) >= len(t.defs) {
		return nil, false
	}
	return &t.defs[id], true
}

// Len returns the number of registered definitions
func (t *PrototypeTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.defs)
}
