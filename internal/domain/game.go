package domain

import "errors"

// Cell represents a board cell state.
type Cell uint8

const (
	Empty Cell = iota
	X
	O
)

func (c Cell) String() string {
	switch c {
	case X:
		return "X"
	case O:
		return "O"
	default:
		return ""
	}
}

// Opponent returns the other mark; Empty stays Empty.
func (c Cell) Opponent() Cell {
	switch c {
	case X:
		return O
	case O:
		return X
	default:
		return Empty
	}
}

// Grid is a fixed 3x3 board stored row-major. It is a value type, so every
// move yields a fresh Grid and snapshots kept in history never change.
type Grid [9]Cell

// Size is the number of cells on a grid.
const Size = len(Grid{})

// RowCol converts a cell index into its row and column.
func RowCol(index int) (row, col int) {
	return index / 3, index % 3
}

// IndexOf converts a row and column (0..2) into a cell index.
func IndexOf(row, col int) (int, error) {
	if row < 0 || row > 2 || col < 0 || col > 2 {
		return 0, ErrOutOfBounds
	}
	return row*3 + col, nil
}

// Full reports whether no cell is Empty.
func (g Grid) Full() bool {
	for _, c := range g {
		if c == Empty {
			return false
		}
	}
	return true
}

// Errors returned by domain operations.
var (
	ErrOutOfBounds   = errors.New("out of bounds")
	ErrCellOccupied  = errors.New("cell occupied")
	ErrGameOver      = errors.New("game over")
	ErrInvalidPlayer = errors.New("invalid player")
)

// ApplyMove places player at index and returns the resulting grid. The input
// grid is left untouched. A decided grid rejects every move with ErrGameOver,
// even when the target cell is empty.
func ApplyMove(g Grid, index int, player Cell) (Grid, error) {
	if index < 0 || index >= Size {
		return g, ErrOutOfBounds
	}
	if player != X && player != O {
		return g, ErrInvalidPlayer
	}
	if Evaluate(g).Decided() {
		return g, ErrGameOver
	}
	if g[index] != Empty {
		return g, ErrCellOccupied
	}
	next := g
	next[index] = player
	return next, nil
}

// ChangedCell returns the first index where prev and next differ, or -1.
func ChangedCell(prev, next Grid) int {
	for i := range prev {
		if prev[i] != next[i] {
			return i
		}
	}
	return -1
}
