package bot

import (
	"gato/Gato-Game/internal/game"
	"math"
)

// winScore is the score of an immediate win; every ply of delay costs one point.
const winScore = 10

type searcher struct {
	marks Marks
	nodes int
}

// hardMove runs a full-depth minimax search. Every root move is scored
// without pruning and the first strictly best one wins ties.
func hardMove(board game.Board, marks Marks) Decision {
	s := &searcher{marks: marks}

	best := Decision{Move: NoMove, Strategy: StrategyMinimax}
	bestScore := math.MinInt
	for _, pos := range game.EmptyPositions(board) {
		score := s.minimax(board.With(pos, marks.Computer), 0, false, math.MinInt, math.MaxInt)
		if score > bestScore {
			bestScore = score
			best.Move = Move{Position: pos, OK: true}
		}
	}

	best.Score = bestScore
	best.Nodes = s.nodes
	return best
}

// minimax scores board from the computer's point of view with alpha-beta pruning.
// depth counts plies below the root move.
func (s *searcher) minimax(board game.Board, depth int, maximizing bool, alpha, beta int) int {
	s.nodes++

	outcome := game.Evaluate(board)
	switch outcome.Status {
	case game.Won:
		if outcome.Winner == s.marks.Computer {
			return winScore - depth
		}
		return depth - winScore
	case game.Draw:
		return 0
	}

	if maximizing {
		maxScore := math.MinInt
		for _, pos := range game.EmptyPositions(board) {
			score := s.minimax(board.With(pos, s.marks.Computer), depth+1, false, alpha, beta)
			maxScore = max(maxScore, score)
			alpha = max(alpha, score)
			if beta <= alpha {
				break
			}
		}
		return maxScore
	}

	minScore := math.MaxInt
	for _, pos := range game.EmptyPositions(board) {
		score := s.minimax(board.With(pos, s.marks.Opponent), depth+1, true, alpha, beta)
		minScore = min(minScore, score)
		beta = min(beta, score)
		if beta <= alpha {
			break
		}
	}
	return minScore
}
