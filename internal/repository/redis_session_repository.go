package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"gato/Gato-Game/internal/bot"
	"gato/Gato-Game/internal/game"
	"gato/Gato-Game/internal/models"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Hash fields of a session key.
const (
	FieldBoard        = "board"
	FieldDifficulty   = "difficulty"
	FieldHumanMark    = "human_mark"
	FieldComputerMark = "computer_mark"
	FieldTurn         = "turn"
	FieldOutcome      = "outcome"
	FieldStats        = "stats"
	FieldStarted      = "started"
	FieldThinking     = "thinking"
	FieldCreatedAt    = "created_at"
	FieldUpdatedAt    = "updated_at"
)

// maxUpdateRetries bounds optimistic transaction retries under contention.
const maxUpdateRetries = 5

type redisSessionRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisSessionRepository creates a new Redis-based SessionRepository.
// Every write refreshes the key's TTL, so idle sessions expire.
func NewRedisSessionRepository(rdb *redis.Client, ttl time.Duration) SessionRepository {
	return &redisSessionRepository{rdb: rdb, ttl: ttl}
}

func sessionKey(id string) string {
	return fmt.Sprintf("session:%s", id)
}

// Create stores a new session.
func (r *redisSessionRepository) Create(ctx context.Context, s *models.Session) error {
	ctx, span := tracer.Start(ctx, "SessionRepository.Create", trace.WithAttributes(attribute.String("session.id", s.ID)))
	defer span.End()

	fields, err := encodeSession(s)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to encode session")
		return err
	}

	key := sessionKey(s.ID)
	pipe := r.rdb.TxPipeline()
	pipe.HSet(ctx, key, fields)
	pipe.Expire(ctx, key, r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to create session")
		return fmt.Errorf("failed to create session in redis: %w", err)
	}
	return nil
}

// FindByID retrieves a session.
func (r *redisSessionRepository) FindByID(ctx context.Context, id string) (*models.Session, error) {
	ctx, span := tracer.Start(ctx, "SessionRepository.FindByID", trace.WithAttributes(attribute.String("session.id", id)))
	defer span.End()

	data, err := r.rdb.HGetAll(ctx, sessionKey(id)).Result()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to get session")
		return nil, fmt.Errorf("failed to get session from redis: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrSessionNotFound
	}
	return decodeSession(id, data)
}

// Update applies fn to the stored session inside a WATCH transaction and
// retries when another writer got there first.
func (r *redisSessionRepository) Update(ctx context.Context, id string, fn UpdateFunc) (*models.Session, error) {
	ctx, span := tracer.Start(ctx, "SessionRepository.Update", trace.WithAttributes(attribute.String("session.id", id)))
	defer span.End()

	key := sessionKey(id)
	var updated *models.Session

	txf := func(tx *redis.Tx) error {
		data, err := tx.HGetAll(ctx, key).Result()
		if err != nil {
			return err
		}
		if len(data) == 0 {
			return ErrSessionNotFound
		}

		s, err := decodeSession(id, data)
		if err != nil {
			return err
		}
		if err := fn(s); err != nil {
			return err
		}

		fields, err := encodeSession(s)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, fields)
			pipe.Expire(ctx, key, r.ttl)
			return nil
		})
		if err != nil {
			return err
		}
		updated = s
		return nil
	}

	for attempt := 0; attempt < maxUpdateRetries; attempt++ {
		err := r.rdb.Watch(ctx, txf, key)
		if err == nil {
			return updated, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			span.AddEvent("transaction conflict", trace.WithAttributes(attribute.Int("attempt", attempt)))
			continue
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to update session")
		return nil, err
	}

	err := fmt.Errorf("failed to update session %s: too much contention", id)
	span.RecordError(err)
	span.SetStatus(codes.Error, "Too much contention")
	return nil, err
}

// Delete removes a session.
func (r *redisSessionRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "SessionRepository.Delete", trace.WithAttributes(attribute.String("session.id", id)))
	defer span.End()

	return r.rdb.Del(ctx, sessionKey(id)).Err()
}

func encodeSession(s *models.Session) (map[string]any, error) {
	board, err := json.Marshal(s.Board)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal board: %w", err)
	}
	outcome, err := json.Marshal(s.Outcome)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal outcome: %w", err)
	}
	stats, err := json.Marshal(s.Stats)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal stats: %w", err)
	}

	return map[string]any{
		FieldBoard:        board,
		FieldDifficulty:   string(s.Difficulty),
		FieldHumanMark:    string(s.HumanMark),
		FieldComputerMark: string(s.ComputerMark),
		FieldTurn:         string(s.Turn),
		FieldOutcome:      outcome,
		FieldStats:        stats,
		FieldStarted:      strconv.FormatBool(s.Started),
		FieldThinking:     strconv.FormatBool(s.Thinking),
		FieldCreatedAt:    s.CreatedAt.UTC().Format(time.RFC3339Nano),
		FieldUpdatedAt:    s.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}, nil
}

func decodeSession(id string, data map[string]string) (*models.Session, error) {
	s := &models.Session{
		ID:           id,
		Difficulty:   bot.Difficulty(data[FieldDifficulty]),
		HumanMark:    game.Mark(data[FieldHumanMark]),
		ComputerMark: game.Mark(data[FieldComputerMark]),
		Turn:         game.Mark(data[FieldTurn]),
		Started:      data[FieldStarted] == "true",
		Thinking:     data[FieldThinking] == "true",
	}

	if err := json.Unmarshal([]byte(data[FieldBoard]), &s.Board); err != nil {
		return nil, fmt.Errorf("failed to unmarshal board: %w", err)
	}
	if err := json.Unmarshal([]byte(data[FieldOutcome]), &s.Outcome); err != nil {
		return nil, fmt.Errorf("failed to unmarshal outcome: %w", err)
	}
	if err := json.Unmarshal([]byte(data[FieldStats]), &s.Stats); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stats: %w", err)
	}

	var err error
	if s.CreatedAt, err = time.Parse(time.RFC3339Nano, data[FieldCreatedAt]); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if s.UpdatedAt, err = time.Parse(time.RFC3339Nano, data[FieldUpdatedAt]); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return s, nil
}
