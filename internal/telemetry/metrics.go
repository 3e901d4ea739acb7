package telemetry

import (
	"context"
	"fmt"
	"gato/Gato-Game/internal/bot"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "gato/Gato-Game"

// Game results as seen by the human player.
const (
	ResultWin  = "win"
	ResultLoss = "loss"
	ResultDraw = "draw"
)

// Metrics records game and computer player measurements.
type Metrics struct {
	gamesFinished   metric.Int64Counter
	botMoveDuration metric.Float64Histogram
	botSearchNodes  metric.Int64Histogram
}

// NewMetrics creates the instruments on meter. A nil meter uses the global
// meter provider.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	if meter == nil {
		meter = otel.Meter(meterName)
	}

	gamesFinished, err := meter.Int64Counter("gato.games.finished",
		metric.WithDescription("Number of finished games by result."),
		metric.WithUnit("{game}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create games counter: %w", err)
	}

	botMoveDuration, err := meter.Float64Histogram("gato.bot.move.duration",
		metric.WithDescription("Time the computer took to answer a move, thinking delay included."),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create move duration histogram: %w", err)
	}

	botSearchNodes, err := meter.Int64Histogram("gato.bot.search.nodes",
		metric.WithDescription("Positions visited by the minimax search for one move."),
		metric.WithUnit("{node}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create search nodes histogram: %w", err)
	}

	return &Metrics{
		gamesFinished:   gamesFinished,
		botMoveDuration: botMoveDuration,
		botSearchNodes:  botSearchNodes,
	}, nil
}

// RecordGameFinished counts one finished game.
func (m *Metrics) RecordGameFinished(ctx context.Context, result string, difficulty bot.Difficulty) {
	if m == nil {
		return
	}
	m.gamesFinished.Add(ctx, 1, metric.WithAttributes(
		attribute.String("game.result", result),
		attribute.String("game.difficulty", string(difficulty)),
	))
}

// RecordBotMove records how a computer move was found.
func (m *Metrics) RecordBotMove(ctx context.Context, difficulty bot.Difficulty, decision bot.Decision, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("game.difficulty", string(difficulty)),
		attribute.String("bot.strategy", string(decision.Strategy)),
	)
	m.botMoveDuration.Record(ctx, float64(elapsed)/float64(time.Millisecond), attrs)
	if decision.Strategy == bot.StrategyMinimax {
		m.botSearchNodes.Record(ctx, int64(decision.Nodes), attrs)
	}
}
