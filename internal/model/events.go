package model

import "time"

// EventType identifies the type of event
type EventType string

const (
	EventGameCreated EventType = "game_created"
	EventMove        EventType = "move"
	EventEffect      EventType = "effect"
	EventUndo        EventType = "undo"
	EventGameEnded   EventType = "game_end"
)

// Event is the base structure for all events
type Event struct {
	Type      EventType
	Timestamp time.Time
	GameID    GameID
	Payload   any // Type-specific data
}

// EffectEvent is emitted when a cosmetic effect fires. Square is the
// canonical key and Label its display form.
type EffectEvent struct {
	Type   string `json:"type"`
	Square Square `json:"square"`
	Label  string `json:"label"`
}

// Effect names carried by EffectEvent
const (
	EffectEventKill           = "kill"
	EffectEventTransformation = "transformation"
	EffectEventTeleport       = "teleport"
	EffectEventDisableSquare  = "disable_square"
	EffectEventEnableSquare   = "enable_square"
	EffectEventWin            = "win"
)

// MovePayload contains data for move events
type MovePayload struct {
	Move MoveRecord `json:"move"`
	Turn Color      `json:"turn"`
}

// GameEndedPayload contains data for game end events
type GameEndedPayload struct {
	Winner Color  `json:"winner,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// UndoPayload contains data for undo events
type UndoPayload struct {
	Move MoveRecord `json:"move"`
	Turn Color      `json:"turn"`
}
