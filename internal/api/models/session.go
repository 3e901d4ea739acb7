package models

import (
	domain "gato/Gato-Game/internal/models"
)

// MoveRequest defines the structure for a move request.
type MoveRequest struct {
	Position *int `json:"position" binding:"required"`
}

// DifficultyRequest defines the structure for a difficulty change request.
type DifficultyRequest struct {
	Difficulty string `json:"difficulty" binding:"required,oneof=normal hard"`
}

// CreateSessionResponse is returned when a session is created. The token
// authenticates every later request for the session.
type CreateSessionResponse struct {
	Session *domain.Session `json:"session"`
	Token   string          `json:"token"`
}

// SessionResponse is the state of a session. Message is set once the game is over.
type SessionResponse struct {
	Session *domain.Session `json:"session"`
	Message string          `json:"message,omitempty"`
}
