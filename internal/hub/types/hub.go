package types

import (
	"context"
	"gato/Gato-Game/internal/room"
)

// RegistrationRequest represents a request to register a client room.
type RegistrationRequest struct {
	Room *room.Room
	Ctx  context.Context
}
