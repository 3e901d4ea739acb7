package room

import (
	"context"
	"encoding/json"
	"errors"
	"gato/Gato-Game/internal/bot"
	"gato/Gato-Game/internal/validator"
	"gato/Gato-Game/pkg/proto"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var errMoveInFlight = errors.New("a move is already in progress")

// HandleMessage handles a message from the client. It acts as a dispatcher.
// The resulting state reaches the client through the session events.
func (r *Room) HandleMessage(ctx context.Context, rawMessage []byte) {
	ctx, span := tracer.Start(ctx, "room.HandleMessage", trace.WithAttributes(
		attribute.String("session.id", r.SessionID),
	))
	defer span.End()

	var message proto.ClientToServerMessage
	if err := json.Unmarshal(rawMessage, &message); err != nil {
		slog.ErrorContext(ctx, "error unmarshalling message", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Error unmarshalling message")
		r.sendError(ctx, "malformed message")
		return
	}

	if err := validator.GetValidator().Struct(message); err != nil {
		slog.WarnContext(ctx, "invalid message from client", "session.id", r.SessionID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid message format")
		r.sendError(ctx, validator.Describe(err))
		return
	}

	span.SetAttributes(attribute.String("message.type", message.Type))

	var err error
	switch message.Type {
	case proto.TypeMove:
		span.SetAttributes(attribute.Int("move.position", *message.Position))
		if !r.moving.CompareAndSwap(false, true) {
			err = errMoveInFlight
			break
		}
		r.moves.Add(1)
		go r.play(ctx, *message.Position)
	case proto.TypeStart:
		_, err = r.sessions.Start(ctx, r.SessionID)
	case proto.TypeReset:
		_, err = r.sessions.Reset(ctx, r.SessionID)
	case proto.TypeMenu:
		_, err = r.sessions.BackToMenu(ctx, r.SessionID)
	case proto.TypeDifficulty:
		_, err = r.sessions.ChangeDifficulty(ctx, r.SessionID, bot.Difficulty(message.Difficulty))
	}
	if err != nil {
		slog.WarnContext(ctx, "client request failed", "session.id", r.SessionID, "message.type", message.Type, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Request failed")
		r.sendError(ctx, err.Error())
	}
}

// play makes the human move and waits for the computer's answer.
func (r *Room) play(ctx context.Context, pos int) {
	defer r.moves.Done()
	defer r.moving.Store(false)

	if _, err := r.sessions.Play(ctx, r.SessionID, pos); err != nil {
		slog.WarnContext(ctx, "client move failed", "session.id", r.SessionID, "move.position", pos, "error", err)
		r.sendError(ctx, err.Error())
	}
}
