package response

import "github.com/mcoot/chesspie/internal/model"

// GameList is the response for listing games
type GameList struct {
	Games []model.GameInfo `json:"games"`
}

// LegalMoves is the response for the legal destinations of a piece
type LegalMoves struct {
	From  string   `json:"from"`
	Moves []string `json:"moves"`
}

// PieceList is the response for listing piece definitions
type PieceList struct {
	Pieces []model.PieceDefinition `json:"pieces"`
}

// PiecesSaved is the response for saving piece definitions
type PiecesSaved struct {
	Saved int `json:"saved"`
	Total int `json:"total"`
}

// Health is the response for the health check
type Health struct {
	Status     string `json:"status"`
	PieceCount int    `json:"pieceCount"`
}
