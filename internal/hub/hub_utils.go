package hub

import (
	"context"
	"errors"
	"gato/Gato-Game/internal/hub/types"
	"gato/Gato-Game/internal/room"
)

var ErrHubStopped = errors.New("hub stopped")

// Serve registers r, runs it until the client leaves and unregisters it.
func (h *Hub) Serve(ctx context.Context, r *room.Room) error {
	select {
	case h.register <- &types.RegistrationRequest{Room: r, Ctx: ctx}:
	case <-ctx.Done():
		r.Close()
		return ctx.Err()
	case <-h.done:
		r.Close()
		return ErrHubStopped
	}

	err := r.Run(ctx)

	select {
	case h.unregister <- r:
	case <-ctx.Done():
	case <-h.done:
	}
	return err
}
