package model

import "time"

// GameID uniquely identifies a game session
type GameID string

// GameState is a phase of the move state machine
type GameState string

const (
	GameStateAwaitingMove GameState = "awaiting_move"
	GameStateValidating   GameState = "validating"
	GameStateCommitted    GameState = "committed"
	GameStateRejected     GameState = "rejected"
	GameStateEnded        GameState = "ended"
)

// Placement is an initial piece on the board. Type is a built-in type or
// the id or name of a custom piece definition.
type Placement struct {
	Type  string `json:"type"`
	Color Color  `json:"color"`
}

// SquareLogicDefinition is authored square behaviour
type SquareLogicDefinition struct {
	Logic     LogicGraph `json:"logic"`
	Variables Variables  `json:"variables,omitempty"`
}

// GameConfig is the authored description a session is built from. Square
// keys may be raw ("x,y") or algebraic on square boards.
type GameConfig struct {
	Rows          int                              `json:"rows"`
	Cols          int                              `json:"cols"`
	Topology      string                           `json:"gridType,omitempty"`
	ActiveSquares []string                         `json:"activeSquares,omitempty"`
	Placements    map[string]Placement             `json:"placements"`
	CustomPieces  []PieceDefinition                `json:"customPieces,omitempty"`
	SquareLogic   map[string]SquareLogicDefinition `json:"squareLogic,omitempty"`
	FirstTurn     Color                            `json:"firstTurn,omitempty"`
}

// MoveOptions carries optional move parameters
type MoveOptions struct {
	// Promotion is the type a piece becomes when the move is a promotion
	Promotion string `json:"promotion,omitempty"`
}

// MoveRecord is one committed move
type MoveRecord struct {
	From      Square `json:"from"`
	To        Square `json:"to"`
	Promotion string `json:"promotion,omitempty"`
	PieceType string `json:"pieceType,omitempty"`
	Captured  string `json:"captured,omitempty"`
	// Consumed marks a move whose mover was removed by an effect
	Consumed bool  `json:"consumed,omitempty"`
	Color    Color `json:"color"`
}

// GameRecord is the persisted form of a session. The board is rebuilt by
// replaying Moves against Config.
type GameRecord struct {
	ID        GameID       `json:"id"`
	Config    GameConfig   `json:"config"`
	Moves     []MoveRecord `json:"moves"`
	State     GameState    `json:"state"`
	Winner    Color        `json:"winner,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// IsEnded reports whether the game is over
func (r *GameRecord) IsEnded() bool {
	return r.State == GameStateEnded
}

// GameInfo is a lightweight listing entry
type GameInfo struct {
	ID        GameID    `json:"id"`
	State     GameState `json:"state"`
	MoveCount int       `json:"moveCount"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Info returns the listing entry for the record
func (r *GameRecord) Info() GameInfo {
	return GameInfo{
		ID:        r.ID,
		State:     r.State,
		MoveCount: len(r.Moves),
		UpdatedAt: r.UpdatedAt,
	}
}

// Clone returns a copy whose move list can be appended to independently
func (r *GameRecord) Clone() *GameRecord {
	c := *r
	c.Moves = append([]MoveRecord(nil), r.Moves...)
	return &c
}
