package request

import "github.com/mcoot/chesspie/internal/model"

// CreateGameRequest is the request body for creating a game
type CreateGameRequest = model.GameConfig

// MoveRequest is the request body for making a move. Squares accept
// either display labels ("e2") or canonical keys ("4,6").
type MoveRequest struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Promotion string `json:"promotion,omitempty"`
}

// EndGameRequest is the request body for ending a game. An empty winner
// records a draw.
type EndGameRequest struct {
	Winner model.Color `json:"winner,omitempty"`
	Reason string      `json:"reason,omitempty"`
}
