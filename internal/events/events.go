package events

import (
	"context"
	"encoding/json"
	"fmt"
	"gato/Gato-Game/internal/game"
	"gato/Gato-Game/internal/models"
)

// Event types
const (
	TypeState            = "state"
	TypeComputerThinking = "computer_thinking"
	TypeGameOver         = "game_over"
)

// SessionChannel returns the Pub/Sub channel of a session.
func SessionChannel(sessionID string) string {
	return fmt.Sprintf("channel:session:%s", sessionID)
}

// Event represents a session change delivered to subscribers.
type Event struct {
	Type      string          `json:"event"`
	SessionID string          `json:"session_id"`
	Payload   json.RawMessage `json:"payload"`
}

// StatePayload is the payload for the "state" and "computer_thinking" events.
type StatePayload struct {
	Session models.Session `json:"session"`
}

// GameOverPayload is the payload for the "game_over" event.
type GameOverPayload struct {
	Outcome game.Outcome `json:"outcome"`
	Message string       `json:"message"`
	Stats   models.Stats `json:"stats"`
}

// New builds an event with a JSON-encoded payload.
func New(eventType, sessionID string, payload any) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}
	return Event{Type: eventType, SessionID: sessionID, Payload: data}, nil
}

// Broker delivers session events to subscribers.
type Broker interface {
	Publish(ctx context.Context, event Event) error
	// Subscribe returns a channel of events for one session. The channel is
	// closed when ctx ends or the returned cancel func is called.
	Subscribe(ctx context.Context, sessionID string) (<-chan Event, func(), error)
}
