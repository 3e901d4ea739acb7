package models

import (
	"gato/Gato-Game/internal/bot"
	"gato/Gato-Game/internal/game"
	"time"
)

// Stats tallies finished games from the human player's point of view.
type Stats struct {
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
	Draws  int `json:"draws"`
}

// Session is one human playing against the computer. The human always plays
// HumanMark and moves first in every new game.
type Session struct {
	ID           string         `json:"id"`
	Board        game.Board     `json:"board"`
	Difficulty   bot.Difficulty `json:"difficulty"`
	HumanMark    game.Mark      `json:"human_mark"`
	ComputerMark game.Mark      `json:"computer_mark"`
	Turn         game.Mark      `json:"turn"`
	Outcome      game.Outcome   `json:"outcome"`
	Stats        Stats          `json:"stats"`
	Started      bool           `json:"started"`
	Thinking     bool           `json:"thinking"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// NewSession returns a session sitting in the menu.
func NewSession(id string, marks bot.Marks, now time.Time) *Session {
	return &Session{
		ID:           id,
		Board:        game.NewBoard(),
		Difficulty:   bot.Normal,
		HumanMark:    marks.Opponent,
		ComputerMark: marks.Computer,
		Turn:         marks.Opponent,
		Outcome:      game.Outcome{Status: game.InProgress},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Marks returns the marks from the computer's side.
func (s *Session) Marks() bot.Marks {
	return bot.Marks{Computer: s.ComputerMark, Opponent: s.HumanMark}
}

// IsOver reports whether the current game has finished.
func (s *Session) IsOver() bool {
	return s.Outcome.IsTerminal()
}

// NewGame clears the board and gives the first move to the human.
func (s *Session) NewGame() {
	s.Board = game.NewBoard()
	s.Turn = s.HumanMark
	s.Outcome = game.Outcome{Status: game.InProgress}
	s.Thinking = false
}

// Apply places mark at pos, evaluates the board, passes the turn and tallies
// a finished game. The caller validates the move.
func (s *Session) Apply(pos int, mark game.Mark) game.Outcome {
	s.Board = s.Board.With(pos, mark)
	s.Outcome = game.Evaluate(s.Board)
	s.Turn = mark.Opponent()
	if s.Outcome.IsTerminal() {
		s.tally(s.Outcome)
	}
	return s.Outcome
}

func (s *Session) tally(outcome game.Outcome) {
	switch {
	case outcome.Status == game.Draw:
		s.Stats.Draws++
	case outcome.Winner == s.HumanMark:
		s.Stats.Wins++
	default:
		s.Stats.Losses++
	}
}
