package game

// Status is the state of a board evaluation.
type Status string

const (
	InProgress Status = "in_progress"
	Won        Status = "won"
	Draw       Status = "draw"
)

// Outcome is the evaluation result of a board. Winner and Line are only set
// when Status is Won.
type Outcome struct {
	Status Status `json:"status"`
	Winner Mark   `json:"winner,omitempty"`
	Line   *Line  `json:"line,omitempty"`
}

// IsTerminal reports whether the game is over.
func (o Outcome) IsTerminal() bool {
	return o.Status == Won || o.Status == Draw
}

// Evaluate determines whether a line is completed, the board is full, or play
// continues. The first completed line in Lines order wins.
func Evaluate(b Board) Outcome {
	for _, line := range Lines {
		first := b[line[0]]
		if first != None && first == b[line[1]] && first == b[line[2]] {
			l := line
			return Outcome{Status: Won, Winner: first, Line: &l}
		}
	}

	if IsFull(b) {
		return Outcome{Status: Draw}
	}

	return Outcome{Status: InProgress}
}
