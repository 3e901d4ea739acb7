package room

import (
	"context"
	"gato/Gato-Game/internal/bot"
	"gato/Gato-Game/internal/events"
	"gato/Gato-Game/internal/models"
	"gato/Gato-Game/pkg/proto"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
)

var heartbeatInterval = 10 * time.Second
var tracer = otel.Tracer("room")

// SessionService is the part of the session service a room drives.
type SessionService interface {
	Get(ctx context.Context, id string) (*models.Session, error)
	Start(ctx context.Context, id string) (*models.Session, error)
	Play(ctx context.Context, id string, pos int) (*models.Session, error)
	Reset(ctx context.Context, id string) (*models.Session, error)
	ChangeDifficulty(ctx context.Context, id string, difficulty bot.Difficulty) (*models.Session, error)
	BackToMenu(ctx context.Context, id string) (*models.Session, error)
	Subscribe(ctx context.Context, id string) (<-chan events.Event, func(), error)
}

// Room connects one websocket client to its game session. Client messages
// drive the session; session events are pushed back to the client.
type Room struct {
	SessionID string
	conn      Connection
	sessions  SessionService
	heartbeat time.Duration
	writeMu   sync.Mutex

	// A move runs off the read loop so reset and menu are handled while the
	// computer is thinking. At most one move is in flight.
	moving atomic.Bool
	moves  sync.WaitGroup
}

// NewRoom creates a room for sessionID.
func NewRoom(sessionID string, conn Connection, sessions SessionService) *Room {
	return &Room{
		SessionID: sessionID,
		conn:      conn,
		sessions:  sessions,
		heartbeat: heartbeatInterval,
	}
}

// Run sends the current state, then serves the connection until the client
// goes away, the event stream ends, or ctx is done. The connection is closed
// on return.
func (r *Room) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer r.conn.Close()

	stream, unsubscribe, err := r.sessions.Subscribe(ctx, r.SessionID)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to subscribe to session events", "session.id", r.SessionID, "error", err)
		return err
	}
	defer unsubscribe()

	sess, err := r.sessions.Get(ctx, r.SessionID)
	if err != nil {
		return err
	}
	r.Send(ctx, &proto.ServerToClientMessage{Type: events.TypeState, Session: sess})

	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		r.ReadPump(ctx)
	}()
	// No new move can start once the read loop is gone.
	defer func() {
		cancel()
		r.conn.Close()
		<-readDone
		r.moves.Wait()
	}()

	pingTicker := time.NewTicker(r.heartbeat)
	defer pingTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-readDone:
			return nil

		case event, ok := <-stream:
			if !ok {
				slog.WarnContext(ctx, "Session event stream closed, dropping client", "session.id", r.SessionID)
				return nil
			}
			message, err := toServerMessage(event)
			if err != nil {
				slog.ErrorContext(ctx, "Failed to decode session event", "session.id", r.SessionID, "event", event.Type, "error", err)
				continue
			}
			r.Send(ctx, message)

		case <-pingTicker.C:
			if err := r.write(websocket.PingMessage, nil); err != nil {
				slog.WarnContext(ctx, "Failed to send ping to client, assuming disconnect", "session.id", r.SessionID, "error", err)
				return nil
			}
		}
	}
}
