package session

import (
	"context"
	"errors"
	"fmt"
	"gato/Gato-Game/internal/bot"
	"gato/Gato-Game/internal/events"
	"gato/Gato-Game/internal/game"
	"gato/Gato-Game/internal/models"
	"gato/Gato-Game/internal/repository"
	"gato/Gato-Game/internal/telemetry"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("session")

var (
	ErrNotStarted  = errors.New("game has not started")
	ErrGameOver    = errors.New("game is over")
	ErrNotYourTurn = errors.New("not your turn")
	ErrIllegalMove = errors.New("illegal move")

	// errStale aborts the computer's move when the game changed while it was thinking.
	errStale = errors.New("session changed while the computer was thinking")
)

// MoveCalculator defines an agent that can calculate the computer's move.
type MoveCalculator interface {
	NextMove(ctx context.Context, board game.Board, difficulty bot.Difficulty) (bot.Decision, error)
}

// Service runs single-player games between a human and the computer. Every
// state change is persisted in the repository and published to the broker.
type Service struct {
	repo       repository.SessionRepository
	broker     events.Broker
	calculator MoveCalculator
	marks      bot.Marks
	metrics    *telemetry.Metrics
	now        func() time.Time
	newID      func() string
}

// Option configures a Service.
type Option func(*Service)

// WithMetrics records finished games and computer moves.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator replaces the UUID session ID generator.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// NewService creates a Service. The human plays the calculator's opponent mark.
func NewService(repo repository.SessionRepository, broker events.Broker, calculator *bot.Player, opts ...Option) *Service {
	return NewServiceWithCalculator(repo, broker, calculator, calculator.Marks(), opts...)
}

// NewServiceWithCalculator creates a Service around any MoveCalculator
// playing marks.Computer.
func NewServiceWithCalculator(repo repository.SessionRepository, broker events.Broker, calculator MoveCalculator, marks bot.Marks, opts ...Option) *Service {
	s := &Service{
		repo:       repo,
		broker:     broker,
		calculator: calculator,
		marks:      marks,
		now:        time.Now,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create starts a new session sitting in the menu.
func (s *Service) Create(ctx context.Context) (*models.Session, error) {
	ctx, span := tracer.Start(ctx, "session.Create")
	defer span.End()

	sess := models.NewSession(s.newID(), s.marks, s.now().UTC())
	span.SetAttributes(attribute.String("session.id", sess.ID))

	if err := s.repo.Create(ctx, sess); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to create session")
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	slog.InfoContext(ctx, "Session created", "session.id", sess.ID)
	return sess, nil
}

// Get returns the current state of a session.
func (s *Service) Get(ctx context.Context, id string) (*models.Session, error) {
	ctx, span := tracer.Start(ctx, "session.Get", trace.WithAttributes(attribute.String("session.id", id)))
	defer span.End()

	sess, err := s.repo.FindByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to find session")
		return nil, err
	}
	return sess, nil
}

// Start clears the board and starts a game with the human to move.
func (s *Service) Start(ctx context.Context, id string) (*models.Session, error) {
	return s.change(ctx, "session.Start", id, startGame)
}

// Reset abandons the current game and starts a new one. Stats are kept.
func (s *Service) Reset(ctx context.Context, id string) (*models.Session, error) {
	return s.change(ctx, "session.Reset", id, startGame)
}

func startGame(sess *models.Session) error {
	sess.NewGame()
	sess.Started = true
	return nil
}

// ChangeDifficulty stores the difficulty. A running game is restarted.
func (s *Service) ChangeDifficulty(ctx context.Context, id string, difficulty bot.Difficulty) (*models.Session, error) {
	parsed, err := bot.ParseDifficulty(string(difficulty))
	if err != nil {
		return nil, err
	}
	return s.change(ctx, "session.ChangeDifficulty", id, func(sess *models.Session) error {
		sess.Difficulty = parsed
		if sess.Started {
			sess.NewGame()
		}
		return nil
	})
}

// BackToMenu leaves the game screen. The board is cleared and stats are kept.
func (s *Service) BackToMenu(ctx context.Context, id string) (*models.Session, error) {
	return s.change(ctx, "session.BackToMenu", id, func(sess *models.Session) error {
		sess.NewGame()
		sess.Started = false
		return nil
	})
}

// change applies fn, stamps the session and publishes the new state.
func (s *Service) change(ctx context.Context, op, id string, fn repository.UpdateFunc) (*models.Session, error) {
	ctx, span := tracer.Start(ctx, op, trace.WithAttributes(attribute.String("session.id", id)))
	defer span.End()

	sess, err := s.repo.Update(ctx, id, func(sess *models.Session) error {
		if err := fn(sess); err != nil {
			return err
		}
		sess.UpdatedAt = s.now().UTC()
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to update session")
		return nil, err
	}

	slog.InfoContext(ctx, "Session updated", "session.id", id, "operation", op, "session.started", sess.Started, "game.difficulty", sess.Difficulty)
	s.publish(ctx, events.TypeState, sess)
	return sess, nil
}

// Play places the human's mark at pos and, if the game goes on, lets the
// computer answer after its thinking time. It returns the session after both
// moves.
func (s *Service) Play(ctx context.Context, id string, pos int) (*models.Session, error) {
	ctx, span := tracer.Start(ctx, "session.Play", trace.WithAttributes(
		attribute.String("session.id", id),
		attribute.Int("move.position", pos),
	))
	defer span.End()

	sess, err := s.repo.Update(ctx, id, func(sess *models.Session) error {
		switch {
		case !sess.Started:
			return ErrNotStarted
		case sess.IsOver():
			return ErrGameOver
		case sess.Thinking || sess.Turn != sess.HumanMark:
			return ErrNotYourTurn
		case !game.IsLegalMove(sess.Board, pos):
			return fmt.Errorf("%w: position %d", ErrIllegalMove, pos)
		}

		outcome := sess.Apply(pos, sess.HumanMark)
		sess.Thinking = !outcome.IsTerminal()
		sess.UpdatedAt = s.now().UTC()
		return nil
	})
	if err != nil {
		slog.WarnContext(ctx, "Move rejected", "session.id", id, "move.position", pos, "error", err)
		span.SetAttributes(attribute.Bool("move.valid", false))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Move rejected")
		return nil, err
	}
	span.SetAttributes(attribute.Bool("move.valid", true))

	if sess.IsOver() {
		s.finish(ctx, sess)
		return sess, nil
	}

	s.publish(ctx, events.TypeComputerThinking, sess)
	return s.computerTurn(ctx, sess)
}

// computerTurn asks the calculator for a move and applies it, unless the game
// was reset or left while the computer was thinking.
func (s *Service) computerTurn(ctx context.Context, sess *models.Session) (*models.Session, error) {
	ctx, span := tracer.Start(ctx, "session.computerTurn", trace.WithAttributes(
		attribute.String("session.id", sess.ID),
		attribute.String("game.difficulty", string(sess.Difficulty)),
	))
	defer span.End()

	start := time.Now()
	decision, err := s.calculator.NextMove(ctx, sess.Board, sess.Difficulty)
	if err != nil {
		// The game must not stay stuck on the computer's turn.
		slog.WarnContext(ctx, "Computer interrupted while thinking, answering immediately", "session.id", sess.ID, "error", err)
		span.RecordError(err)
		decision = bot.Decide(sess.Board, sess.Difficulty, sess.Marks(), nil)
	}
	s.metrics.RecordBotMove(ctx, sess.Difficulty, decision, time.Since(start))
	span.SetAttributes(
		attribute.Int("move.position", decision.Position),
		attribute.String("bot.strategy", string(decision.Strategy)),
	)

	// A client that went away must not leave the game on the computer's turn.
	ctx = context.WithoutCancel(ctx)
	board := sess.Board
	updated, err := s.repo.Update(ctx, sess.ID, func(cur *models.Session) error {
		if !cur.Thinking || cur.Board != board {
			return errStale
		}
		if decision.OK && game.IsLegalMove(cur.Board, decision.Position) {
			cur.Apply(decision.Position, cur.ComputerMark)
		} else {
			cur.Turn = cur.HumanMark
		}
		cur.Thinking = false
		cur.UpdatedAt = s.now().UTC()
		return nil
	})
	if errors.Is(err, errStale) {
		slog.InfoContext(ctx, "Discarding computer move for a changed game", "session.id", sess.ID, "move.position", decision.Position)
		return s.repo.FindByID(ctx, sess.ID)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to apply computer move")
		s.release(ctx, sess.ID, board)
		return nil, fmt.Errorf("failed to apply computer move: %w", err)
	}

	slog.InfoContext(ctx, "Computer moved", "session.id", sess.ID, "move.position", decision.Position, "bot.strategy", decision.Strategy, "bot.nodes", decision.Nodes)
	if updated.IsOver() {
		s.finish(ctx, updated)
	} else {
		s.publish(ctx, events.TypeState, updated)
	}
	return updated, nil
}

// release hands the turn back to the human after the computer's move could not
// be saved, so the game does not stay locked in the thinking state.
func (s *Service) release(ctx context.Context, id string, board game.Board) {
	_, err := s.repo.Update(ctx, id, func(cur *models.Session) error {
		if !cur.Thinking || cur.Board != board {
			return errStale
		}
		cur.Thinking = false
		cur.Turn = cur.HumanMark
		cur.UpdatedAt = s.now().UTC()
		return nil
	})
	if err != nil && !errors.Is(err, errStale) {
		slog.ErrorContext(ctx, "Failed to hand the turn back after a lost computer move", "session.id", id, "error", err)
	}
}

// finish announces a finished game.
func (s *Service) finish(ctx context.Context, sess *models.Session) {
	message := ResultMessage(sess.Outcome, sess.HumanMark)
	slog.InfoContext(ctx, "Game over", "session.id", sess.ID, "game.status", sess.Outcome.Status, "game.winner", sess.Outcome.Winner, "result", message)
	s.metrics.RecordGameFinished(ctx, result(sess.Outcome, sess.HumanMark), sess.Difficulty)

	s.publish(ctx, events.TypeState, sess)
	s.publishEvent(ctx, events.TypeGameOver, sess.ID, events.GameOverPayload{
		Outcome: sess.Outcome,
		Message: message,
		Stats:   sess.Stats,
	})
}

func (s *Service) publish(ctx context.Context, eventType string, sess *models.Session) {
	s.publishEvent(ctx, eventType, sess.ID, events.StatePayload{Session: *sess})
}

// publishEvent logs failures; a missing subscriber update never fails a move.
func (s *Service) publishEvent(ctx context.Context, eventType, id string, payload any) {
	event, err := events.New(eventType, id, payload)
	if err == nil {
		err = s.broker.Publish(ctx, event)
	}
	if err != nil {
		slog.ErrorContext(ctx, "Failed to publish session event", "session.id", id, "event", eventType, "error", err)
	}
}

// Subscribe streams the events of a session until ctx ends or cancel is called.
func (s *Service) Subscribe(ctx context.Context, id string) (<-chan events.Event, func(), error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, nil, err
	}
	return s.broker.Subscribe(ctx, id)
}

// ResultMessage is the line shown to the human when a game ends.
func ResultMessage(outcome game.Outcome, human game.Mark) string {
	switch {
	case outcome.Status == game.Draw:
		return "Draw"
	case outcome.Status == game.Won && outcome.Winner == human:
		return "You win!"
	case outcome.Status == game.Won:
		return "You lose!"
	}
	return ""
}

func result(outcome game.Outcome, human game.Mark) string {
	switch {
	case outcome.Status == game.Draw:
		return telemetry.ResultDraw
	case outcome.Winner == human:
		return telemetry.ResultWin
	}
	return telemetry.ResultLoss
}
