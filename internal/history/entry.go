package history

import (
	"fmt"

	"github.com/jaminalder/tic-tac-toe-timetravel/internal/domain"
)

// Entry describes one position in the history. Index is the cell filled by the
// move, or -1 for game start.
type Entry struct {
	Move    int
	Index   int
	Row     int
	Col     int
	Player  domain.Cell
	Current bool
}

// Description is the label of the button that jumps to this entry.
func (e Entry) Description() string {
	if e.Move == 0 {
		return "Go to game start"
	}
	return fmt.Sprintf("Go to move #%d (%d, %d)", e.Move, e.Row, e.Col)
}

// CurrentLabel is shown instead of the button for the entry on display.
func (e Entry) CurrentLabel() string {
	return fmt.Sprintf("You are at move #%d", e.Move)
}

// Entries diffs consecutive grids to find which cell each move filled.
func (s *Store) Entries() []Entry {
	out := make([]Entry, len(s.grids))
	for i, g := range s.grids {
		e := Entry{Move: i, Index: -1, Row: -1, Col: -1, Current: i == s.current}
		if i > 0 {
			if idx := domain.ChangedCell(s.grids[i-1], g); idx >= 0 {
				e.Index = idx
				e.Row, e.Col = domain.RowCol(idx)
				e.Player = g[idx]
			}
		}
		out[i] = e
	}
	return out
}

// Descriptions returns the jump labels in ascending move order.
func (s *Store) Descriptions() []string {
	entries := s.Entries()
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Description()
	}
	return out
}
