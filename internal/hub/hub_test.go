package hub

import (
	"context"
	"errors"
	"gato/Gato-Game/internal/hub/types"
	"gato/Gato-Game/internal/room"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// idleConn is a Connection that blocks on reads until closed.
type idleConn struct {
	closed    chan struct{}
	closeOnce sync.Once
}

func newIdleConn() *idleConn { return &idleConn{closed: make(chan struct{})} }

func (c *idleConn) ReadMessage() (int, []byte, error) {
	<-c.closed
	return 0, nil, errors.New("closed")
}

func (c *idleConn) WriteMessage(int, []byte) error { return nil }

func (c *idleConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

func (c *idleConn) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

func startHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	h := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)
	t.Cleanup(cancel)
	return h, cancel
}

func TestHub_ReconnectReplacesPreviousClient(t *testing.T) {
	h, _ := startHub(t)

	firstConn, secondConn := newIdleConn(), newIdleConn()
	first := room.NewRoom("s1", firstConn, nil)
	second := room.NewRoom("s1", secondConn, nil)

	h.Register() <- &types.RegistrationRequest{Room: first}
	h.Register() <- &types.RegistrationRequest{Room: second}

	assert.Eventually(t, firstConn.isClosed, time.Second, 5*time.Millisecond)
	assert.False(t, secondConn.isClosed())
	assert.Equal(t, 1, h.Connections())

	// The replaced room unregistering must not evict its successor.
	h.Unregister() <- first
	h.Register() <- &types.RegistrationRequest{Room: room.NewRoom("s2", newIdleConn(), nil)}
	assert.Eventually(t, func() bool { return h.Connections() == 2 }, time.Second, 5*time.Millisecond)

	h.Unregister() <- second
	assert.Eventually(t, func() bool { return h.Connections() == 1 }, time.Second, 5*time.Millisecond)
}

func TestHub_StopClosesRooms(t *testing.T) {
	h, cancel := startHub(t)

	conn := newIdleConn()
	h.Register() <- &types.RegistrationRequest{Room: room.NewRoom("s1", conn, nil)}
	cancel()

	assert.Eventually(t, conn.isClosed, time.Second, 5*time.Millisecond)
	<-h.done

	err := h.Serve(context.Background(), room.NewRoom("s2", newIdleConn(), nil))
	assert.ErrorIs(t, err, ErrHubStopped)
}
