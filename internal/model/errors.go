package model

import "errors"

// Common errors used across the application
var (
	// Game errors
	ErrGameNotFound   = errors.New("game not found")
	ErrInvalidConfig  = errors.New("invalid game configuration")
	ErrMoveRejected   = errors.New("move rejected")
	ErrGameEnded      = errors.New("game has ended")
	ErrInvalidSquare  = errors.New("invalid square")
	ErrPieceNotFound  = errors.New("no piece on square")
	ErrNothingToUndo  = errors.New("nothing to undo")
	ErrInvalidColor   = errors.New("invalid color")
	ErrReplayMismatch = errors.New("recorded move could not be replayed")

	// Library errors
	ErrPieceDefinitionNotFound = errors.New("piece definition not found")
	ErrInvalidPieceDefinition  = errors.New("invalid piece definition")
)
