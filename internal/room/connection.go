package room

import (
	"context"
	"encoding/json"
	"gato/Gato-Game/pkg/proto"
	"log/slog"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Connection is an interface that abstracts the websocket connection.
type Connection interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (int, []byte, error)
	Close() error
}

// Send writes a message to the client.
func (r *Room) Send(ctx context.Context, message *proto.ServerToClientMessage) {
	ctx, span := tracer.Start(ctx, "room.Send", trace.WithAttributes(
		attribute.String("session.id", r.SessionID),
		attribute.String("message.type", message.Type),
	))
	defer span.End()

	data, err := json.Marshal(message)
	if err != nil {
		slog.ErrorContext(ctx, "error marshalling message", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Error marshalling message")
		return
	}

	if err := r.write(websocket.TextMessage, data); err != nil {
		slog.ErrorContext(ctx, "error writing message to client", "session.id", r.SessionID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Error writing message to client")
	}
}

// sendError tells the client its last message was rejected.
func (r *Room) sendError(ctx context.Context, reason string) {
	r.Send(ctx, &proto.ServerToClientMessage{Type: proto.TypeError, Reason: reason})
}

// write serializes writes; a websocket connection allows one writer at a time.
func (r *Room) write(messageType int, data []byte) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()
	return r.conn.WriteMessage(messageType, data)
}

// ReadPump reads client messages until the connection fails and handles them
// in order. Moves finish in the background, see HandleMessage.
func (r *Room) ReadPump(ctx context.Context) {
	ctx, span := tracer.Start(ctx, "room.ReadPump", trace.WithAttributes(
		attribute.String("session.id", r.SessionID),
	))
	defer span.End()

	for {
		_, msg, err := r.conn.ReadMessage()
		if err != nil {
			slog.InfoContext(ctx, "Client connection closed", "session.id", r.SessionID, "error", err)
			return
		}
		r.HandleMessage(ctx, msg)
	}
}

// Close closes the client connection, which ends Run.
func (r *Room) Close() error {
	return r.conn.Close()
}
