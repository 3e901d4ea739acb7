package game

import "fmt"

// ParseBoard converts a wire representation ("X", "O" or "" per cell) into a Board.
func ParseBoard(cells []string) (Board, error) {
	var b Board
	if len(cells) != CellCount {
		return b, fmt.Errorf("%w: want %d cells, got %d", ErrInvalidBoard, CellCount, len(cells))
	}
	for i, cell := range cells {
		switch m := Mark(cell); m {
		case None, PlayerX, PlayerO:
			b[i] = m
		default:
			return b, fmt.Errorf("%w: unknown mark %q at %d", ErrInvalidBoard, cell, i)
		}
	}
	return b, nil
}

// Strings converts the board to its wire representation.
func (b Board) Strings() []string {
	cells := make([]string, CellCount)
	for i, cell := range b {
		cells[i] = string(cell)
	}
	return cells
}
