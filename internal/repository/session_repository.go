package repository

import (
	"context"
	"errors"
	"gato/Gato-Game/internal/models"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("repository.session")

var ErrSessionNotFound = errors.New("session not found")

// UpdateFunc mutates a session inside a repository transaction. Returning an
// error aborts the update and is passed back to the caller unchanged.
type UpdateFunc func(s *models.Session) error

// SessionRepository defines the interface for session data operations.
type SessionRepository interface {
	Create(ctx context.Context, s *models.Session) error
	FindByID(ctx context.Context, id string) (*models.Session, error)
	Update(ctx context.Context, id string, fn UpdateFunc) (*models.Session, error)
	Delete(ctx context.Context, id string) error
}
