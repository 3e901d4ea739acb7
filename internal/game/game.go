package game

import "errors"

// Mark represents the mark of a player (X, O) or an empty cell.
type Mark string

const (
	// Player marks
	None    Mark = ""
	PlayerX Mark = "X"
	PlayerO Mark = "O"

	// Board boundaries
	Size      = 3
	CellCount = Size * Size
	Center    = 4
)

var ErrInvalidBoard = errors.New("invalid board")

// Opponent returns the other player's mark. None has no opponent.
func (m Mark) Opponent() Mark {
	switch m {
	case PlayerX:
		return PlayerO
	case PlayerO:
		return PlayerX
	}
	return None
}

// Board is a 3x3 grid stored row-major (index = row*3 + col).
// It is a value type: every transformation returns a new board.
type Board [CellCount]Mark

// Line is one of the fixed winning index triples.
type Line [3]int

// Lines lists the rows, columns and diagonals in scan order.
var Lines = [8]Line{
	// rows
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	// cols
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	// diags
	{0, 4, 8}, {2, 4, 6},
}

// Corners are the corner cells of the board.
var Corners = [4]int{0, 2, 6, 8}

// NewBoard returns a fresh all-empty board.
func NewBoard() Board {
	return Board{}
}

// With returns a copy of b with mark placed at pos. The receiver is unchanged.
func (b Board) With(pos int, mark Mark) Board {
	b[pos] = mark
	return b
}

// Count returns the number of occupied cells.
func (b Board) Count() int {
	n := 0
	for _, cell := range b {
		if cell != None {
			n++
		}
	}
	return n
}

// EmptyPositions returns the indices of all empty cells in ascending order.
func EmptyPositions(b Board) []int {
	positions := make([]int, 0, CellCount)
	for i, cell := range b {
		if cell == None {
			positions = append(positions, i)
		}
	}
	return positions
}

// IsLegalMove reports whether pos is on the board and empty.
func IsLegalMove(b Board, pos int) bool {
	return pos >= 0 && pos < CellCount && b[pos] == None
}

// IsFull checks if every cell is occupied.
func IsFull(b Board) bool {
	for _, cell := range b {
		if cell == None {
			return false
		}
	}
	return true
}
