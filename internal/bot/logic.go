package bot

import (
	"errors"
	"fmt"
	"gato/Gato-Game/internal/game"
	"math/rand/v2"
	"strings"
)

// Difficulty selects the move strategy of the computer player.
type Difficulty string

const (
	Normal Difficulty = "normal"
	Hard   Difficulty = "hard"
)

// heuristicProbability is the share of normal-difficulty turns that follow
// the win/block/center/corner rules instead of a random cell.
const heuristicProbability = 0.7

var ErrUnknownDifficulty = errors.New("unknown difficulty")

// ParseDifficulty converts user input into a Difficulty.
func ParseDifficulty(s string) (Difficulty, error) {
	switch d := Difficulty(strings.ToLower(strings.TrimSpace(s))); d {
	case Normal, Hard:
		return d, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDifficulty, s)
}

// Marks tells the selector which side it plays.
type Marks struct {
	Computer game.Mark
	Opponent game.Mark
}

// DefaultMarks has the human playing X and the computer answering with O.
var DefaultMarks = Marks{Computer: game.PlayerO, Opponent: game.PlayerX}

// MarksFor returns the marks for a computer playing computer.
func MarksFor(computer game.Mark) Marks {
	return Marks{Computer: computer, Opponent: computer.Opponent()}
}

// Source is the random source used by the normal strategy.
// *rand.Rand from math/rand/v2 satisfies it.
type Source interface {
	Float64() float64
	IntN(n int) int
}

// NewSource returns a seeded, reproducible Source. It is not safe for
// concurrent use.
func NewSource(seed uint64) Source {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

type runtimeSource struct{}

func (runtimeSource) Float64() float64 { return rand.Float64() }
func (runtimeSource) IntN(n int) int   { return rand.IntN(n) }

// DefaultSource draws from the math/rand/v2 global generator and is safe for
// concurrent use.
var DefaultSource Source = runtimeSource{}

// Move is the selector's answer. OK is false when no move is available.
type Move struct {
	Position int  `json:"position"`
	OK       bool `json:"ok"`
}

// NoMove is returned for a full or already decided board.
var NoMove = Move{}

// Strategy names the rule that produced a move.
type Strategy string

const (
	StrategyNone    Strategy = ""
	StrategyWin     Strategy = "win"
	StrategyBlock   Strategy = "block"
	StrategyCenter  Strategy = "center"
	StrategyCorner  Strategy = "corner"
	StrategyRandom  Strategy = "random"
	StrategyMinimax Strategy = "minimax"
)

// Decision is a Move plus how it was found.
type Decision struct {
	Move
	Strategy Strategy
	// Nodes and Score are only set by the minimax strategy.
	Nodes int
	Score int
}

// SelectMove returns the computer's next move for the given board.
func SelectMove(board game.Board, difficulty Difficulty, marks Marks, src Source) Move {
	return Decide(board, difficulty, marks, src).Move
}

// Decide is SelectMove with the reasoning attached.
func Decide(board game.Board, difficulty Difficulty, marks Marks, src Source) Decision {
	if src == nil {
		src = DefaultSource
	}
	if game.Evaluate(board).IsTerminal() {
		return Decision{Move: NoMove}
	}

	switch difficulty {
	case Normal:
		return normalMove(board, marks, src)
	case Hard:
		return hardMove(board, marks)
	default:
		return hardMove(board, marks)
	}
}

func decided(pos int, strategy Strategy) Decision {
	return Decision{Move: Move{Position: pos, OK: true}, Strategy: strategy}
}

// normalMove follows the heuristic most of the time and plays randomly otherwise.
func normalMove(board game.Board, marks Marks, src Source) Decision {
	if src.Float64() < heuristicProbability {
		// 1. Win: Check if the bot can win in the next move
		if pos, ok := findWinningMove(board, marks.Computer); ok {
			return decided(pos, StrategyWin)
		}

		// 2. Block: Check if the opponent is about to win and block them
		if pos, ok := findWinningMove(board, marks.Opponent); ok {
			return decided(pos, StrategyBlock)
		}

		// 3. Center: Take the center if it's available
		if board[game.Center] == game.None {
			return decided(game.Center, StrategyCenter)
		}

		// 4. Corners: Take an available corner randomly
		availableCorners := make([]int, 0, len(game.Corners))
		for _, corner := range game.Corners {
			if board[corner] == game.None {
				availableCorners = append(availableCorners, corner)
			}
		}
		if len(availableCorners) > 0 {
			return decided(availableCorners[src.IntN(len(availableCorners))], StrategyCorner)
		}
	}

	return randomMove(board, src)
}

// randomMove picks uniformly among the empty cells.
func randomMove(board game.Board, src Source) Decision {
	availableMoves := game.EmptyPositions(board)
	if len(availableMoves) == 0 {
		return Decision{Move: NoMove}
	}
	return decided(availableMoves[src.IntN(len(availableMoves))], StrategyRandom)
}

// findWinningMove returns the first empty position where mark completes a line.
func findWinningMove(board game.Board, mark game.Mark) (int, bool) {
	for _, pos := range game.EmptyPositions(board) {
		if outcome := game.Evaluate(board.With(pos, mark)); outcome.Status == game.Won {
			return pos, true
		}
	}
	return -1, false
}
