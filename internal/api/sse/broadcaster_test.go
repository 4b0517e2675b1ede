package sse

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/chesspie/internal/model"
	"github.com/mcoot/chesspie/internal/testutil"
)

func TestBroadcaster_PublishEncodesEvent(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	defer manager.RemoveHub("GAME1")
	broadcaster := NewBroadcaster(manager, testutil.NopLogger())

	hub := manager.GetOrCreateHub("GAME1")
	client := NewClient(hub, "c1")
	hub.Register(client)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	broadcaster.Publish(model.Event{
		Type:      model.EventEffect,
		GameID:    "GAME1",
		Timestamp: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		Payload:   model.EffectEvent{Type: model.EffectEventKill, Square: "4,4", Label: "e4"},
	})

	msg := receive(t, client)
	require.True(t, strings.HasPrefix(msg, "event: effect\ndata: "))

	data := strings.TrimSuffix(strings.TrimPrefix(msg, "event: effect\ndata: "), "\n\n")
	var decoded struct {
		Type    string            `json:"type"`
		GameID  string            `json:"gameId"`
		Payload model.EffectEvent `json:"payload"`
	}
	require.NoError(t, json.Unmarshal([]byte(data), &decoded))
	assert.Equal(t, "effect", decoded.Type)
	assert.Equal(t, "GAME1", decoded.GameID)
	assert.Equal(t, "e4", decoded.Payload.Label)
}

func TestBroadcaster_PublishWithoutHubIsDropped(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	broadcaster := NewBroadcaster(manager, testutil.NopLogger())

	broadcaster.Publish(model.Event{Type: model.EventMove, GameID: "NOBODY"})

	assert.Nil(t, manager.GetHub("NOBODY"))
}

func TestBroadcaster_OnlyReachesItsGame(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	defer manager.RemoveHub("GAME1")
	defer manager.RemoveHub("GAME2")
	broadcaster := NewBroadcaster(manager, testutil.NopLogger())

	hub1 := manager.GetOrCreateHub("GAME1")
	hub2 := manager.GetOrCreateHub("GAME2")
	c1 := NewClient(hub1, "c1")
	c2 := NewClient(hub2, "c2")
	hub1.Register(c1)
	hub2.Register(c2)
	require.Eventually(t, func() bool {
		return hub1.ClientCount() == 1 && hub2.ClientCount() == 1
	}, time.Second, 5*time.Millisecond)

	broadcaster.Publish(model.Event{Type: model.EventUndo, GameID: "GAME2"})

	assert.Contains(t, receive(t, c2), "event: undo")
	select {
	case msg := <-c1.send:
		t.Fatalf("unexpected message for GAME1: %q", msg)
	case <-time.After(50 * time.Millisecond):
	}
}
