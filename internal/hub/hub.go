package hub

import (
	"context"
	"gato/Gato-Game/internal/hub/types"
	"gato/Gato-Game/internal/room"
	"log/slog"
	"sync/atomic"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("hub")

// Hub tracks the live websocket room of every session. A session has at most
// one connected client; a reconnecting client replaces the previous one.
type Hub struct {
	rooms       map[string]*room.Room
	register    chan *types.RegistrationRequest
	unregister  chan *room.Room
	done        chan struct{}
	connections atomic.Int64
}

// NewHub creates a new hub.
func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]*room.Room),
		register:   make(chan *types.RegistrationRequest),
		unregister: make(chan *room.Room),
		done:       make(chan struct{}),
	}
}

// Run processes registrations until ctx is done, then closes every room.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for id, r := range h.rooms {
				r.Close()
				delete(h.rooms, id)
			}
			h.connections.Store(0)
			slog.Info("Hub stopped")
			return

		case req := <-h.register:
			h.handleRegistration(req)

		case r := <-h.unregister:
			h.handleUnregistration(r)
		}
	}
}

// Register returns the register channel.
func (h *Hub) Register() chan<- *types.RegistrationRequest {
	return h.register
}

// Unregister returns the unregister channel.
func (h *Hub) Unregister() chan<- *room.Room {
	return h.unregister
}

// Connections returns the number of connected clients.
func (h *Hub) Connections() int {
	return int(h.connections.Load())
}
