package bot

import (
	"context"
	"gato/Gato-Game/internal/game"
	"log/slog"
	"sync"
	"time"
)

// ThinkingTimes is the artificial delay before the computer answers, per difficulty.
type ThinkingTimes struct {
	Normal time.Duration
	Hard   time.Duration
}

// DefaultThinkingTimes is the pace of the game screen.
var DefaultThinkingTimes = ThinkingTimes{Normal: 500 * time.Millisecond, Hard: 1000 * time.Millisecond}

// For returns the delay for d.
func (t ThinkingTimes) For(d Difficulty) time.Duration {
	if d == Normal {
		return t.Normal
	}
	return t.Hard
}

// Player is the computer opponent. It waits its thinking time and then asks
// the selector for a move. The delay never influences the move itself.
type Player struct {
	marks    Marks
	thinking ThinkingTimes

	mu  sync.Mutex // guards src
	src Source
}

// NewPlayer creates a computer opponent. A nil src uses DefaultSource.
func NewPlayer(marks Marks, src Source, thinking ThinkingTimes) *Player {
	if src == nil {
		src = DefaultSource
	}
	return &Player{
		marks:    marks,
		thinking: thinking,
		src:      src,
	}
}

// Marks returns the marks this player uses.
func (p *Player) Marks() Marks {
	return p.marks
}

// NextMove blocks for the thinking time and returns the decision. It returns
// ctx.Err() if the context ends first.
func (p *Player) NextMove(ctx context.Context, board game.Board, difficulty Difficulty) (Decision, error) {
	if delay := p.thinking.For(difficulty); delay > 0 {
		slog.DebugContext(ctx, "Bot is thinking...", "bot.mark", p.marks.Computer, "bot.difficulty", difficulty, "delay", delay)
		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return Decision{}, ctx.Err()
		case <-timer.C:
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return Decide(board, difficulty, p.marks, p.src), nil
}
