package hub

import (
	"context"
	"gato/Gato-Game/internal/hub/types"
	"gato/Gato-Game/internal/room"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

func (h *Hub) handleRegistration(req *types.RegistrationRequest) {
	ctx := req.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, span := tracer.Start(ctx, "hub.handleRegistration", trace.WithAttributes(
		attribute.String("session.id", req.Room.SessionID),
	))
	defer span.End()

	if existing, ok := h.rooms[req.Room.SessionID]; ok && existing != req.Room {
		slog.InfoContext(ctx, "Client reconnected, closing previous connection", "session.id", req.Room.SessionID)
		span.SetAttributes(attribute.Bool("session.reconnected", true))
		existing.Close()
	} else {
		h.connections.Add(1)
	}
	h.rooms[req.Room.SessionID] = req.Room
	slog.InfoContext(ctx, "Client registered", "session.id", req.Room.SessionID, "hub.connections", h.Connections())
}

func (h *Hub) handleUnregistration(r *room.Room) {
	// A replaced room unregisters after its successor took the slot.
	if current, ok := h.rooms[r.SessionID]; !ok || current != r {
		return
	}
	delete(h.rooms, r.SessionID)
	h.connections.Add(-1)
	slog.Info("Client unregistered", "session.id", r.SessionID, "hub.connections", h.Connections())
}
