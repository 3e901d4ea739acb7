package proto

import (
	"gato/Gato-Game/internal/game"
	"gato/Gato-Game/internal/models"
)

// Client message types.
const (
	TypeMove       = "move"
	TypeReset      = "reset"
	TypeStart      = "start"
	TypeMenu       = "menu"
	TypeDifficulty = "difficulty"
)

// TypeError is sent to the client when one of its messages is rejected.
const TypeError = "error"

// ClientToServerMessage represents a message from the client to the server.
type ClientToServerMessage struct {
	Type       string `json:"type" validate:"required,oneof=move reset start menu difficulty"`
	Position   *int   `json:"position,omitempty" validate:"required_if=Type move"`
	Difficulty string `json:"difficulty,omitempty" validate:"required_if=Type difficulty,omitempty,oneof=normal hard"`
}

// ServerToClientMessage represents a message from the server to the client.
// Type is one of the session event types or "error".
type ServerToClientMessage struct {
	Type    string          `json:"type" validate:"required"`
	Session *models.Session `json:"session,omitempty"`
	Outcome *game.Outcome   `json:"outcome,omitempty"`
	Message string          `json:"message,omitempty"`
	Stats   *models.Stats   `json:"stats,omitempty"`
	Reason  string          `json:"reason,omitempty"`
}
