// Package history keeps the ordered list of grids played in one game and the
// pointer that selects which of them is on display.
package history

import (
	"errors"
	"fmt"

	"github.com/jaminalder/tic-tac-toe-timetravel/internal/domain"
)

// ErrOutOfRange is returned when jumping to a move that does not exist.
var ErrOutOfRange = errors.New("move out of range")

// Store holds the grids from game start to the latest move. grids[0] is always
// the empty grid and current is always a valid index into grids.
type Store struct {
	grids   []domain.Grid
	current int
}

// New returns a store at game start.
func New() *Store {
	s := &Store{}
	s.Restart()
	return s
}

// Restart discards every move and returns to game start.
func (s *Store) Restart() {
	s.grids = []domain.Grid{{}}
	s.current = 0
}

// Play drops every grid after the current one and appends next.
func (s *Store) Play(next domain.Grid) {
	s.grids = append(s.grids[:s.current+1:s.current+1], next)
	s.current = len(s.grids) - 1
}

// JumpTo moves the display pointer without altering the grids.
func (s *Store) JumpTo(move int) error {
	if move < 0 || move >= len(s.grids) {
		return fmt.Errorf("%w: %d not in [0, %d]", ErrOutOfRange, move, len(s.grids)-1)
	}
	s.current = move
	return nil
}

func (s *Store) CurrentMove() int { return s.current }

func (s *Store) Len() int { return len(s.grids) }

func (s *Store) CurrentGrid() domain.Grid { return s.grids[s.current] }

// Grid returns the grid at move i.
func (s *Store) Grid(i int) (domain.Grid, bool) {
	if i < 0 || i >= len(s.grids) {
		return domain.Grid{}, false
	}
	return s.grids[i], true
}

// Grids returns a copy of every grid in order.
func (s *Store) Grids() []domain.Grid {
	out := make([]domain.Grid, len(s.grids))
	copy(out, s.grids)
	return out
}

// NextPlayer is X on even moves and O on odd ones.
func (s *Store) NextPlayer() domain.Cell {
	if s.current%2 == 0 {
		return domain.X
	}
	return domain.O
}

// Clone returns an independent copy of the store.
func (s *Store) Clone() *Store {
	return &Store{grids: s.Grids(), current: s.current}
}
