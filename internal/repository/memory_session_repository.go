package repository

import (
	"context"
	"gato/Gato-Game/internal/models"
	"sync"
	"time"
)

type memoryEntry struct {
	session   models.Session
	expiresAt time.Time
}

type memorySessionRepository struct {
	mu        sync.Mutex
	sessions  map[string]memoryEntry
	ttl       time.Duration
	now       func() time.Time
	lastSweep time.Time
}

// MemoryOption configures the in-process repository.
type MemoryOption func(*memorySessionRepository)

// WithMemoryClock replaces time.Now for expiry checks.
func WithMemoryClock(now func() time.Time) MemoryOption {
	return func(r *memorySessionRepository) { r.now = now }
}

// NewMemorySessionRepository creates an in-process SessionRepository.
// Sessions are stored and returned by value. A session expires ttl after its
// last write, matching the Redis store; a ttl of zero keeps sessions forever.
func NewMemorySessionRepository(ttl time.Duration, opts ...MemoryOption) SessionRepository {
	r := &memorySessionRepository{
		sessions: make(map[string]memoryEntry),
		ttl:      ttl,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.lastSweep = r.now()
	return r
}

func (r *memorySessionRepository) Create(ctx context.Context, s *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	r.sweep(now)
	r.sessions[s.ID] = memoryEntry{session: *s, expiresAt: r.expiry(now)}
	return nil
}

func (r *memorySessionRepository) FindByID(ctx context.Context, id string) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.live(id, r.now())
	if !ok {
		return nil, ErrSessionNotFound
	}
	return &e.session, nil
}

func (r *memorySessionRepository) Update(ctx context.Context, id string, fn UpdateFunc) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	e, ok := r.live(id, now)
	if !ok {
		return nil, ErrSessionNotFound
	}
	s := e.session
	if err := fn(&s); err != nil {
		return nil, err
	}
	r.sessions[id] = memoryEntry{session: s, expiresAt: r.expiry(now)}
	return &s, nil
}

func (r *memorySessionRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

// live returns the entry for id, dropping it if it has expired.
func (r *memorySessionRepository) live(id string, now time.Time) (memoryEntry, bool) {
	e, ok := r.sessions[id]
	if !ok {
		return memoryEntry{}, false
	}
	if r.expired(e, now) {
		delete(r.sessions, id)
		return memoryEntry{}, false
	}
	return e, true
}

// sweep drops every expired session, at most once per ttl.
func (r *memorySessionRepository) sweep(now time.Time) {
	if r.ttl <= 0 || now.Sub(r.lastSweep) < r.ttl {
		return
	}
	r.lastSweep = now
	for id, e := range r.sessions {
		if r.expired(e, now) {
			delete(r.sessions, id)
		}
	}
}

func (r *memorySessionRepository) expiry(now time.Time) time.Time {
	if r.ttl <= 0 {
		return time.Time{}
	}
	return now.Add(r.ttl)
}

func (r *memorySessionRepository) expired(e memoryEntry, now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}
