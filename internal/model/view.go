package model

import "time"

// PieceView is a piece as presented to clients, with its display label
type PieceView struct {
	ID        PieceID   `json:"id"`
	Type      string    `json:"type"`
	Name      string    `json:"name,omitempty"`
	Color     Color     `json:"color"`
	Square    Square    `json:"square"`
	Label     string    `json:"label"`
	HasMoved  bool      `json:"hasMoved"`
	Custom    bool      `json:"custom,omitempty"`
	Variables Variables `json:"variables,omitempty"`
}

// MoveView is a committed move with display labels
type MoveView struct {
	MoveRecord
	FromLabel string `json:"fromLabel"`
	ToLabel   string `json:"toLabel"`
}

// GameView is the full observable state of a game
type GameView struct {
	ID        GameID      `json:"id"`
	State     GameState   `json:"state"`
	Turn      Color       `json:"turn"`
	Winner    Color       `json:"winner,omitempty"`
	Rows      int         `json:"rows"`
	Cols      int         `json:"cols"`
	Topology  string      `json:"gridType"`
	Active    []string    `json:"activeSquares"`
	Pieces    []PieceView `json:"pieces"`
	Moves     []MoveView  `json:"moves"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// MoveResult is the outcome of a committed move
type MoveResult struct {
	Move    MoveView      `json:"move"`
	Effects []EffectEvent `json:"effects"`
	Game    *GameView     `json:"game"`
}

// Summary reports material and the result of a game
type Summary struct {
	GameID     GameID        `json:"gameId"`
	State      GameState     `json:"state"`
	Winner     Color         `json:"winner,omitempty"`
	Result     string        `json:"result"`
	Material   map[Color]int `json:"material"`
	PieceCount map[Color]int `json:"pieceCount"`
	MoveCount  int           `json:"moveCount"`
	Captures   map[Color]int `json:"captures"`
}
