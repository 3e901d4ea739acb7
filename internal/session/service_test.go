package session

import (
	"context"
	"errors"
	"gato/Gato-Game/internal/bot"
	"gato/Gato-Game/internal/events"
	"gato/Gato-Game/internal/game"
	"gato/Gato-Game/internal/models"
	"gato/Gato-Game/internal/repository"
	"gato/Gato-Game/internal/repository/mocks"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var (
	X = game.PlayerX
	O = game.PlayerO
	E = game.None
)

// scriptedCalculator answers with a fixed list of positions.
type scriptedCalculator struct {
	mu    sync.Mutex
	moves []int
}

func (c *scriptedCalculator) NextMove(ctx context.Context, board game.Board, difficulty bot.Difficulty) (bot.Decision, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.moves) == 0 {
		return bot.Decision{Move: bot.NoMove}, nil
	}
	pos := c.moves[0]
	c.moves = c.moves[1:]
	return bot.Decision{Move: bot.Move{Position: pos, OK: true}, Strategy: bot.StrategyRandom}, nil
}

// gatedCalculator blocks until released.
type gatedCalculator struct {
	started chan struct{}
	release chan struct{}
	answer  int
}

func (c *gatedCalculator) NextMove(ctx context.Context, board game.Board, difficulty bot.Difficulty) (bot.Decision, error) {
	c.started <- struct{}{}
	<-c.release
	return bot.Decision{Move: bot.Move{Position: c.answer, OK: true}}, nil
}

// stuckCalculator never answers before ctx ends.
type stuckCalculator struct{}

func (stuckCalculator) NextMove(ctx context.Context, board game.Board, difficulty bot.Difficulty) (bot.Decision, error) {
	<-ctx.Done()
	return bot.Decision{}, ctx.Err()
}

func newTestService(calc MoveCalculator) (*Service, *events.MemoryBroker) {
	broker := events.NewMemoryBroker()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	svc := NewServiceWithCalculator(
		repository.NewMemorySessionRepository(time.Hour), broker, calc, bot.DefaultMarks,
		WithClock(func() time.Time { return now }),
		WithIDGenerator(func() string { return "s1" }),
	)
	return svc, broker
}

func startedSession(t *testing.T, svc *Service) *models.Session {
	t.Helper()
	sess, err := svc.Create(context.Background())
	require.NoError(t, err)
	sess, err = svc.Start(context.Background(), sess.ID)
	require.NoError(t, err)
	return sess
}

func drain(ch <-chan events.Event) []string {
	var types []string
	for {
		select {
		case e := <-ch:
			types = append(types, e.Type)
		case <-time.After(50 * time.Millisecond):
			return types
		}
	}
}

func TestService_Create(t *testing.T) {
	svc, _ := newTestService(&scriptedCalculator{})

	sess, err := svc.Create(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "s1", sess.ID)
	assert.False(t, sess.Started)
	assert.Equal(t, bot.Normal, sess.Difficulty)
	assert.Equal(t, X, sess.HumanMark)
	assert.Equal(t, O, sess.ComputerMark)
	assert.Equal(t, game.NewBoard(), sess.Board)

	got, err := svc.Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, sess.ID, got.ID)
}

func TestService_PlayRejections(t *testing.T) {
	ctx := context.Background()

	t.Run("Not started", func(t *testing.T) {
		svc, _ := newTestService(&scriptedCalculator{})
		sess, err := svc.Create(ctx)
		require.NoError(t, err)

		_, err = svc.Play(ctx, sess.ID, 4)
		assert.ErrorIs(t, err, ErrNotStarted)
	})

	t.Run("Illegal positions", func(t *testing.T) {
		svc, _ := newTestService(&scriptedCalculator{moves: []int{0}})
		sess := startedSession(t, svc)

		_, err := svc.Play(ctx, sess.ID, 4)
		require.NoError(t, err)

		for _, pos := range []int{4, 0, -1, 9} {
			_, err := svc.Play(ctx, sess.ID, pos)
			assert.ErrorIs(t, err, ErrIllegalMove, "position %d", pos)
		}
	})

	t.Run("Unknown session", func(t *testing.T) {
		svc, _ := newTestService(&scriptedCalculator{})
		_, err := svc.Play(ctx, "missing", 4)
		assert.ErrorIs(t, err, repository.ErrSessionNotFound)
	})
}

func TestService_HumanWins(t *testing.T) {
	ctx := context.Background()
	svc, broker := newTestService(&scriptedCalculator{moves: []int{3, 4}})
	sess, err := svc.Create(ctx)
	require.NoError(t, err)

	ch, cancel, err := broker.Subscribe(ctx, sess.ID)
	require.NoError(t, err)
	defer cancel()

	_, err = svc.Start(ctx, sess.ID)
	require.NoError(t, err)

	sess, err = svc.Play(ctx, sess.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, game.Board{X, E, E, O, E, E, E, E, E}, sess.Board)
	assert.Equal(t, X, sess.Turn)
	assert.False(t, sess.Thinking)

	_, err = svc.Play(ctx, sess.ID, 1)
	require.NoError(t, err)

	sess, err = svc.Play(ctx, sess.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, game.Won, sess.Outcome.Status)
	assert.Equal(t, X, sess.Outcome.Winner)
	assert.Equal(t, models.Stats{Wins: 1}, sess.Stats)
	assert.Equal(t, "You win!", ResultMessage(sess.Outcome, sess.HumanMark))

	_, err = svc.Play(ctx, sess.ID, 5)
	assert.ErrorIs(t, err, ErrGameOver)

	assert.Equal(t, []string{
		events.TypeState,
		events.TypeComputerThinking, events.TypeState,
		events.TypeComputerThinking, events.TypeState,
		events.TypeState, events.TypeGameOver,
	}, drain(ch))
}

func TestService_ComputerWinsAndStatsSurviveReset(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(&scriptedCalculator{moves: []int{3, 4, 5}})
	sess := startedSession(t, svc)

	for _, pos := range []int{0, 1, 6} {
		var err error
		sess, err = svc.Play(ctx, sess.ID, pos)
		require.NoError(t, err)
	}
	assert.Equal(t, O, sess.Outcome.Winner)
	assert.Equal(t, models.Stats{Losses: 1}, sess.Stats)
	require.NotNil(t, sess.Outcome.Line)
	assert.Equal(t, game.Line{3, 4, 5}, *sess.Outcome.Line)

	sess, err := svc.Reset(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, game.NewBoard(), sess.Board)
	assert.Equal(t, game.InProgress, sess.Outcome.Status)
	assert.Equal(t, X, sess.Turn)
	assert.Equal(t, models.Stats{Losses: 1}, sess.Stats)
}

func TestService_HardComputerAnswers(t *testing.T) {
	ctx := context.Background()
	player := bot.NewPlayer(bot.DefaultMarks, bot.NewSource(1), bot.ThinkingTimes{})
	svc := NewService(repository.NewMemorySessionRepository(time.Hour), events.NewMemoryBroker(), player)

	sess := startedSession(t, svc)
	_, err := svc.ChangeDifficulty(ctx, sess.ID, bot.Hard)
	require.NoError(t, err)

	sess, err = svc.Play(ctx, sess.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, game.Board{O, E, E, E, X, E, E, E, E}, sess.Board)
}

func TestService_ChangeDifficulty(t *testing.T) {
	ctx := context.Background()

	t.Run("Restarts a running game", func(t *testing.T) {
		svc, _ := newTestService(&scriptedCalculator{moves: []int{0}})
		sess := startedSession(t, svc)
		_, err := svc.Play(ctx, sess.ID, 4)
		require.NoError(t, err)

		sess, err = svc.ChangeDifficulty(ctx, sess.ID, bot.Hard)
		require.NoError(t, err)
		assert.Equal(t, bot.Hard, sess.Difficulty)
		assert.Equal(t, game.NewBoard(), sess.Board)
		assert.True(t, sess.Started)
	})

	t.Run("Stays in the menu", func(t *testing.T) {
		svc, _ := newTestService(&scriptedCalculator{})
		sess, err := svc.Create(ctx)
		require.NoError(t, err)

		sess, err = svc.ChangeDifficulty(ctx, sess.ID, bot.Hard)
		require.NoError(t, err)
		assert.False(t, sess.Started)
	})

	t.Run("Unknown difficulty", func(t *testing.T) {
		svc, _ := newTestService(&scriptedCalculator{})
		sess, err := svc.Create(ctx)
		require.NoError(t, err)

		_, err = svc.ChangeDifficulty(ctx, sess.ID, bot.Difficulty("impossible"))
		assert.ErrorIs(t, err, bot.ErrUnknownDifficulty)
	})
}

func TestService_BackToMenu(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(&scriptedCalculator{moves: []int{3, 4}})
	sess := startedSession(t, svc)
	for _, pos := range []int{0, 1, 2} {
		var err error
		sess, err = svc.Play(ctx, sess.ID, pos)
		require.NoError(t, err)
	}

	sess, err := svc.BackToMenu(ctx, sess.ID)
	require.NoError(t, err)
	assert.False(t, sess.Started)
	assert.Equal(t, game.NewBoard(), sess.Board)
	assert.Equal(t, models.Stats{Wins: 1}, sess.Stats)

	_, err = svc.Play(ctx, sess.ID, 0)
	assert.ErrorIs(t, err, ErrNotStarted)
}

func TestService_ResetWhileThinkingDiscardsMove(t *testing.T) {
	ctx := context.Background()
	calc := &gatedCalculator{started: make(chan struct{}), release: make(chan struct{}), answer: 8}
	svc, _ := newTestService(calc)
	sess := startedSession(t, svc)

	type result struct {
		sess *models.Session
		err  error
	}
	done := make(chan result, 1)
	go func() {
		s, err := svc.Play(ctx, sess.ID, 4)
		done <- result{s, err}
	}()

	<-calc.started
	_, err := svc.Play(ctx, sess.ID, 0)
	assert.ErrorIs(t, err, ErrNotYourTurn)

	_, err = svc.Reset(ctx, sess.ID)
	require.NoError(t, err)
	close(calc.release)

	res := <-done
	require.NoError(t, res.err)
	assert.Equal(t, game.NewBoard(), res.sess.Board)
	assert.False(t, res.sess.Thinking)
	assert.Equal(t, X, res.sess.Turn)
}

func TestService_InterruptedComputerStillAnswers(t *testing.T) {
	svc, _ := newTestService(stuckCalculator{})
	sess := startedSession(t, svc)
	_, err := svc.ChangeDifficulty(context.Background(), sess.ID, bot.Hard)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	sess, err = svc.Play(ctx, sess.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, game.Board{O, E, E, E, X, E, E, E, E}, sess.Board)
	assert.False(t, sess.Thinking)
}

func TestService_Subscribe(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(&scriptedCalculator{})

	_, _, err := svc.Subscribe(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrSessionNotFound)

	sess, err := svc.Create(ctx)
	require.NoError(t, err)
	ch, cancel, err := svc.Subscribe(ctx, sess.ID)
	require.NoError(t, err)
	defer cancel()

	_, err = svc.Start(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{events.TypeState}, drain(ch))
}

func TestService_RepositoryFailures(t *testing.T) {
	ctx := context.Background()
	errDown := errors.New("redis down")

	t.Run("Create", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mocks.NewMockSessionRepository(ctrl)
		repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errDown)

		svc := NewServiceWithCalculator(repo, events.NewMemoryBroker(), &scriptedCalculator{}, bot.DefaultMarks)
		_, err := svc.Create(ctx)
		assert.ErrorIs(t, err, errDown)
	})

	t.Run("Computer move not saved", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mocks.NewMockSessionRepository(ctrl)

		sess := models.NewSession("s1", bot.DefaultMarks, time.Now())
		sess.Started = true
		apply := func(ctx context.Context, id string, fn repository.UpdateFunc) (*models.Session, error) {
			if err := fn(sess); err != nil {
				return nil, err
			}
			cp := *sess
			return &cp, nil
		}
		gomock.InOrder(
			repo.EXPECT().Update(gomock.Any(), "s1", gomock.Any()).DoAndReturn(apply),
			repo.EXPECT().Update(gomock.Any(), "s1", gomock.Any()).Return(nil, errDown),
			repo.EXPECT().Update(gomock.Any(), "s1", gomock.Any()).DoAndReturn(apply),
			repo.EXPECT().Update(gomock.Any(), "s1", gomock.Any()).DoAndReturn(apply),
			repo.EXPECT().Update(gomock.Any(), "s1", gomock.Any()).DoAndReturn(apply),
		)

		svc := NewServiceWithCalculator(repo, events.NewMemoryBroker(), &scriptedCalculator{moves: []int{0}}, bot.DefaultMarks)
		_, err := svc.Play(ctx, "s1", 4)
		assert.ErrorIs(t, err, errDown)

		// The turn is handed back instead of staying locked.
		assert.False(t, sess.Thinking)
		assert.Equal(t, X, sess.Turn)
		assert.Equal(t, X, sess.Board[4])

		// The next human move goes through.
		_, err = svc.Play(ctx, "s1", 0)
		require.NoError(t, err)
		assert.Equal(t, X, sess.Board[0])
		assert.False(t, sess.Thinking)
	})
}

func TestResultMessage(t *testing.T) {
	tests := []struct {
		name    string
		outcome game.Outcome
		want    string
		result  string
	}{
		{"Draw", game.Outcome{Status: game.Draw}, "Draw", "draw"},
		{"Human wins", game.Outcome{Status: game.Won, Winner: X}, "You win!", "win"},
		{"Computer wins", game.Outcome{Status: game.Won, Winner: O}, "You lose!", "loss"},
		{"In progress", game.Outcome{Status: game.InProgress}, "", "loss"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResultMessage(tt.outcome, X))
			if tt.outcome.IsTerminal() {
				assert.Equal(t, tt.result, result(tt.outcome, X))
			}
		})
	}
}
