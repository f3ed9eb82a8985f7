// Package view turns a game session into display instructions. It knows
// nothing about HTML or terminals; the web and text renderers consume Page.
package view

import (
	"slices"

	"github.com/jaminalder/tic-tac-toe-timetravel/internal/app"
	"github.com/jaminalder/tic-tac-toe-timetravel/internal/domain"
)

// Square is one board cell as displayed.
type Square struct {
	Index   int
	Row     int
	Col     int
	Value   string
	Winning bool
}

// MoveItem is one row of the move list. Current rows show Label as plain text,
// the others as a jump button.
type MoveItem struct {
	Move    int
	Label   string
	Current bool
}

// Page is everything needed to draw one session.
type Page struct {
	ID         string
	Status     string
	Over       bool
	Rows       [3][3]Square
	Moves      []MoveItem
	Descending bool
	SortLabel  string
	Error      string
}

// Build maps the session's current state into a Page.
func Build(s *app.Session) Page {
	grid := s.CurrentGrid()
	out := s.Outcome()

	p := Page{
		ID:         s.ID,
		Status:     Status(out, s.NextPlayer()),
		Over:       out.Decided(),
		Descending: s.SortOrder() == app.Descending,
	}
	for i, c := range grid {
		r, col := domain.RowCol(i)
		p.Rows[r][col] = Square{Index: i, Row: r, Col: col, Value: c.String(), Winning: out.Contains(i)}
	}

	entries := s.Entries()
	p.Moves = make([]MoveItem, len(entries))
	for i, e := range entries {
		item := MoveItem{Move: e.Move, Label: e.Description(), Current: e.Current}
		if e.Current {
			item.Label = e.CurrentLabel()
		}
		p.Moves[i] = item
	}
	if p.Descending {
		slices.Reverse(p.Moves)
		p.SortLabel = "Sort: Desc"
	} else {
		p.SortLabel = "Sort: Asc"
	}
	return p
}

// Status is the line shown above the board.
func Status(out domain.Outcome, next domain.Cell) string {
	switch out.Status {
	case domain.Win:
		return "Winner: " + out.Winner.String()
	case domain.Draw:
		return "Draw!"
	default:
		return "Next player: " + next.String()
	}
}
