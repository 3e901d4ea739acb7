package events

import (
	"context"
	"log/slog"
	"sync"
)

const subscriberBuffer = 16

type subscriber struct {
	ch        chan Event
	closeOnce sync.Once
}

func (s *subscriber) close() { s.closeOnce.Do(func() { close(s.ch) }) }

// MemoryBroker fans events out to in-process subscribers. Slow subscribers
// whose buffer is full are dropped.
type MemoryBroker struct {
	mu   sync.Mutex
	subs map[string]map[*subscriber]struct{}
}

// NewMemoryBroker creates an in-process Broker.
func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{subs: make(map[string]map[*subscriber]struct{})}
}

// Publish delivers event to every subscriber of its session.
func (b *MemoryBroker) Publish(ctx context.Context, event Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for sub := range b.subs[event.SessionID] {
		select {
		case sub.ch <- event:
		default:
			slog.WarnContext(ctx, "dropping slow subscriber", "session.id", event.SessionID)
			delete(b.subs[event.SessionID], sub)
			sub.close()
		}
	}
	return nil
}

// Subscribe registers a subscriber for a session.
func (b *MemoryBroker) Subscribe(ctx context.Context, sessionID string) (<-chan Event, func(), error) {
	sub := &subscriber{ch: make(chan Event, subscriberBuffer)}

	b.mu.Lock()
	set := b.subs[sessionID]
	if set == nil {
		set = make(map[*subscriber]struct{})
		b.subs[sessionID] = set
	}
	set[sub] = struct{}{}
	b.mu.Unlock()

	done := make(chan struct{})
	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			close(done)
			b.mu.Lock()
			if set, ok := b.subs[sessionID]; ok {
				delete(set, sub)
				if len(set) == 0 {
					delete(b.subs, sessionID)
				}
			}
			b.mu.Unlock()
			sub.close()
		})
	}

	go func() {
		select {
		case <-ctx.Done():
			unsubscribe()
		case <-done:
		}
	}()

	return sub.ch, unsubscribe, nil
}
