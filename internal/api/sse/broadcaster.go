package sse

import (
	"encoding/json"
	"log/slog"

	"github.com/mcoot/chesspie/internal/model"
)

// Broadcaster publishes game events to the SSE hub of the game they
// belong to. Events for games nobody is watching are dropped.
type Broadcaster struct {
	manager *HubManager
	logger  *slog.Logger
}

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(manager *HubManager, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{manager: manager, logger: logger}
}

// eventMessage is the JSON body of a streamed event
type eventMessage struct {
	Type      model.EventType `json:"type"`
	GameID    model.GameID    `json:"gameId"`
	Timestamp int64           `json:"timestamp"`
	Payload   any             `json:"payload,omitempty"`
}

// Publish sends an event to every client watching its game
func (b *Broadcaster) Publish(event model.Event) {
	hub := b.manager.GetHub(event.GameID)
	if hub == nil {
		return
	}

	data, err := json.Marshal(eventMessage{
		Type:      event.Type,
		GameID:    event.GameID,
		Timestamp: event.Timestamp.UnixMilli(),
		Payload:   event.Payload,
	})
	if err != nil {
		b.logger.Error("failed to encode sse event",
			slog.String("game_id", string(event.GameID)),
			slog.String("event", string(event.Type)),
			slog.String("error", err.Error()))
		return
	}

	hub.BroadcastEvent(string(event.Type), string(data))
}
