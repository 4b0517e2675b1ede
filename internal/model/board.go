package model

import (
	"sort"
)

// Board owns occupancy, the active square set, the side to move and any
// square logic. Keys are canonical square keys.
type Board struct {
	Width    int
	Height   int
	Topology string
	Turn     Color

	pieces  map[Square]*Piece
	active  map[Square]bool
	squares map[Square]*SquareLogic
}

// NewBoard creates an empty board whose active set is exactly active
func NewBoard(width, height int, topology string, active []Square) *Board {
	b := &Board{
		Width:    width,
		Height:   height,
		Topology: topology,
		Turn:     White,
		pieces:   make(map[Square]*Piece),
		active:   make(map[Square]bool, len(active)),
		squares:  make(map[Square]*SquareLogic),
	}
	for _, sq := range active {
		b.active[sq] = true
	}
	return b
}

// IsActive reports whether sq is a playable square
func (b *Board) IsActive(sq Square) bool {
	return b.active[sq]
}

// SetActive enables or disables a square. Occupied squares cannot be
// disabled; the call reports whether the state changed.
func (b *Board) SetActive(sq Square, active bool) bool {
	if b.active[sq] == active {
		return false
	}
	if !active {
		if _, occupied := b.pieces[sq]; occupied {
			return false
		}
		delete(b.active, sq)
		return true
	}
	b.active[sq] = true
	return true
}

// ActiveSquares returns the active keys in sorted order
func (b *Board) ActiveSquares() []Square {
	out := make([]Square, 0, len(b.active))
	for sq := range b.active {
		out = append(out, sq)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Piece returns the piece on sq, or nil
func (b *Board) Piece(sq Square) *Piece {
	return b.pieces[sq]
}

// SetPiece places p on sq, or clears sq when p is nil. Placing onto an
// inactive square is ignored.
func (b *Board) SetPiece(sq Square, p *Piece) {
	if p == nil {
		delete(b.pieces, sq)
		return
	}
	if !b.active[sq] {
		return
	}
	p.Position = sq
	b.pieces[sq] = p
}

// FindPiece locates a piece by id
func (b *Board) FindPiece(id PieceID) (*Piece, bool) {
	for _, p := range b.pieces {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// Pieces returns every piece ordered by square key
func (b *Board) Pieces() []*Piece {
	keys := make([]Square, 0, len(b.pieces))
	for sq := range b.pieces {
		keys = append(keys, sq)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	out := make([]*Piece, len(keys))
	for i, sq := range keys {
		out[i] = b.pieces[sq]
	}
	return out
}

// PiecesOf returns the pieces of one side ordered by square key
func (b *Board) PiecesOf(c Color) []*Piece {
	var out []*Piece
	for _, p := range b.Pieces() {
		if p.Color == c {
			out = append(out, p)
		}
	}
	return out
}

// SquareLogic returns the logic attached to sq, or nil
func (b *Board) SquareLogic(sq Square) *SquareLogic {
	return b.squares[sq]
}

// SetSquareLogic attaches logic to sq
func (b *Board) SetSquareLogic(sq Square, logic *SquareLogic) {
	if logic == nil {
		delete(b.squares, sq)
		return
	}
	logic.Square = sq
	b.squares[sq] = logic
}

// LogicSquares returns the keys that carry square logic, sorted
func (b *Board) LogicSquares() []Square {
	out := make([]Square, 0, len(b.squares))
	for sq := range b.squares {
		out = append(out, sq)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Clone returns a deep, independent copy
func (b *Board) Clone() *Board {
	c := &Board{
		Width:    b.Width,
		Height:   b.Height,
		Topology: b.Topology,
		Turn:     b.Turn,
		pieces:   make(map[Square]*Piece, len(b.pieces)),
		active:   make(map[Square]bool, len(b.active)),
		squares:  make(map[Square]*SquareLogic, len(b.squares)),
	}
	for sq, p := range b.pieces {
		c.pieces[sq] = p.Clone()
	}
	for sq := range b.active {
		c.active[sq] = true
	}
	for sq, l := range b.squares {
		c.squares[sq] = l.Clone()
	}
	return c
}

// PieceSnapshot is the comparable state of one piece
type PieceSnapshot struct {
	Square    Square    `json:"square"`
	ID        PieceID   `json:"id"`
	Type      string    `json:"type"`
	Color     Color     `json:"color"`
	HasMoved  bool      `json:"hasMoved"`
	Variables Variables `json:"variables,omitempty"`
}

// SquareSnapshot is the comparable state of one square's variables
type SquareSnapshot struct {
	Square    Square    `json:"square"`
	Variables Variables `json:"variables,omitempty"`
}

// BoardSnapshot is an order-stable view of a board. Two boards reached
// by the same moves produce equal snapshots.
type BoardSnapshot struct {
	Turn    Color            `json:"turn"`
	Active  []Square         `json:"active"`
	Pieces  []PieceSnapshot  `json:"pieces"`
	Squares []SquareSnapshot `json:"squares,omitempty"`
}

// Snapshot captures the board's comparable state
func (b *Board) Snapshot() BoardSnapshot {
	s := BoardSnapshot{
		Turn:   b.Turn,
		Active: b.ActiveSquares(),
		Pieces: make([]PieceSnapshot, 0, len(b.pieces)),
	}
	for _, p := range b.Pieces() {
		s.Pieces = append(s.Pieces, PieceSnapshot{
			Square:    p.Position,
			ID:        p.ID,
			Type:      p.Type,
			Color:     p.Color,
			HasMoved:  p.HasMoved,
			Variables: p.Variables.Clone(),
		})
	}
	for _, sq := range b.LogicSquares() {
		s.Squares = append(s.Squares, SquareSnapshot{
			Square:    sq,
			Variables: b.squares[sq].Variables.Clone(),
		})
	}
	return s
}
