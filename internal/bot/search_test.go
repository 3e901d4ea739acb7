package bot

import (
	"gato/Gato-Game/internal/game"
	"testing"
)

func TestHardMove(t *testing.T) {
	tests := []struct {
		name  string
		board game.Board
		marks Marks
		want  []int
	}{
		{
			name:  "Block immediate win",
			board: game.Board{X, X, E, O, E, E, E, E, E},
			marks: DefaultMarks,
			want:  []int{2},
		},
		{
			name:  "Win instead of block",
			board: game.Board{X, X, E, O, O, E, E, E, E},
			marks: DefaultMarks,
			want:  []int{5},
		},
		{
			name:  "Answer center with a corner",
			board: game.Board{E, E, E, E, X, E, E, E, E},
			marks: DefaultMarks,
			want:  []int{0, 2, 6, 8},
		},
		{
			name:  "Playing X",
			board: game.Board{O, O, E, X, X, E, E, E, E},
			marks: MarksFor(X),
			want:  []int{5},
		},
		{
			name:  "Last free cell",
			board: game.Board{X, O, X, X, O, O, O, X, E},
			marks: DefaultMarks,
			want:  []int{8},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SelectMove(tt.board, Hard, tt.marks, nil)
			if !got.OK || !contains(tt.want, got.Position) {
				t.Errorf("SelectMove(hard) got %+v, want one of %v", got, tt.want)
			}
		})
	}
}

func TestHardMoveTieBreakIsFirstIndex(t *testing.T) {
	// Every corner draws against a center opening; the lowest index is kept.
	got := Decide(game.Board{E, E, E, E, X, E, E, E, E}, Hard, DefaultMarks, nil)
	if got.Position != 0 || got.Score != 0 {
		t.Errorf("Decide(hard) got position %d score %d, want 0 and 0", got.Position, got.Score)
	}
	if got.Nodes == 0 {
		t.Error("Decide(hard) reported no searched nodes")
	}
}

func TestHardMovePrefersFasterWin(t *testing.T) {
	// O wins at once on 8 (column 2) or later by other routes.
	board := game.Board{X, X, O, E, E, O, X, E, E}
	got := Decide(board, Hard, DefaultMarks, nil)
	if got.Position != 8 || got.Score != winScore {
		t.Errorf("Decide(hard) got position %d score %d, want 8 and %d", got.Position, got.Score, winScore)
	}
}

func TestHardNeverLoses(t *testing.T) {
	for _, first := range []game.Mark{X, O} {
		t.Run("computer as "+string(first), func(t *testing.T) {
			marks := MarksFor(first)
			// The computer opens as X; as O it answers every possible opening.
			toMove := X
			playOut(t, game.NewBoard(), toMove, marks, nil)
		})
	}
}

// playOut lets the hard selector play every branch the opponent could choose.
func playOut(t *testing.T, board game.Board, toMove game.Mark, marks Marks, path []int) {
	t.Helper()

	outcome := game.Evaluate(board)
	if outcome.IsTerminal() {
		if outcome.Status == game.Won && outcome.Winner == marks.Opponent {
			t.Fatalf("opponent won after moves %v: %v", path, board)
		}
		return
	}

	if toMove == marks.Computer {
		move := SelectMove(board, Hard, marks, nil)
		if !move.OK || !game.IsLegalMove(board, move.Position) {
			t.Fatalf("illegal move %+v after moves %v", move, path)
		}
		playOut(t, board.With(move.Position, marks.Computer), marks.Opponent, marks, append(path[:len(path):len(path)], move.Position))
		return
	}

	for _, pos := range game.EmptyPositions(board) {
		playOut(t, board.With(pos, marks.Opponent), marks.Computer, marks, append(path[:len(path):len(path)], pos))
	}
}

func TestHardSelfPlayIsDraw(t *testing.T) {
	board := game.NewBoard()
	turn := X
	for !game.Evaluate(board).IsTerminal() {
		move := SelectMove(board, Hard, MarksFor(turn), nil)
		if !move.OK {
			t.Fatalf("no move on a live board %v", board)
		}
		board = board.With(move.Position, turn)
		turn = turn.Opponent()
	}

	if outcome := game.Evaluate(board); outcome.Status != game.Draw {
		t.Errorf("self play got %+v, want a draw", outcome)
	}
}

func TestHardBeatsNormalOrDraws(t *testing.T) {
	src := NewSource(2024)
	for i := 0; i < 50; i++ {
		board := game.NewBoard()
		turn := X
		hard := MarksFor(O)
		if i%2 == 1 {
			hard = MarksFor(X)
		}
		for !game.Evaluate(board).IsTerminal() {
			difficulty := Normal
			if turn == hard.Computer {
				difficulty = Hard
			}
			move := SelectMove(board, difficulty, MarksFor(turn), src)
			board = board.With(move.Position, turn)
			turn = turn.Opponent()
		}
		if outcome := game.Evaluate(board); outcome.Status == game.Won && outcome.Winner != hard.Computer {
			t.Fatalf("normal beat hard in game %d: %v", i, board)
		}
	}
}

func contains(list []int, v int) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
