package app

import (
	"time"

	"github.com/jaminalder/tic-tac-toe-timetravel/internal/domain"
	"github.com/jaminalder/tic-tac-toe-timetravel/internal/history"
)

// SortOrder controls how the move list is displayed. It has no effect on the
// game itself.
type SortOrder uint8

const (
	Ascending SortOrder = iota
	Descending
)

func (o SortOrder) String() string {
	if o == Descending {
		return "desc"
	}
	return "asc"
}

// Session is the controller for one game: it owns the history and the move
// list ordering, and is the only thing adapters talk to.
type Session struct {
	ID      string
	Created time.Time
	Updated time.Time

	history *history.Store
	order   SortOrder
}

// NewSession returns a session at game start.
func NewSession(id string, now time.Time) *Session {
	return &Session{ID: id, Created: now, Updated: now, history: history.New()}
}

// Play places the next player's mark at index. On error nothing changes.
func (s *Session) Play(index int) error {
	next, err := domain.ApplyMove(s.history.CurrentGrid(), index, s.history.NextPlayer())
	if err != nil {
		return err
	}
	s.history.Play(next)
	return nil
}

// JumpTo displays an earlier (or later) move without discarding anything.
func (s *Session) JumpTo(move int) error {
	return s.history.JumpTo(move)
}

func (s *Session) Restart() { s.history.Restart() }

func (s *Session) ToggleSort() {
	if s.order == Ascending {
		s.order = Descending
	} else {
		s.order = Ascending
	}
}

func (s *Session) SortOrder() SortOrder { return s.order }

func (s *Session) CurrentGrid() domain.Grid { return s.history.CurrentGrid() }

func (s *Session) CurrentMove() int { return s.history.CurrentMove() }

func (s *Session) Moves() int { return s.history.Len() - 1 }

func (s *Session) Outcome() domain.Outcome { return domain.Evaluate(s.history.CurrentGrid()) }

func (s *Session) NextPlayer() domain.Cell { return s.history.NextPlayer() }

func (s *Session) Entries() []history.Entry { return s.history.Entries() }

func (s *Session) HistoryDescriptions() []string { return s.history.Descriptions() }

// Clone returns a deep copy safe to hand out to readers.
func (s *Session) Clone() *Session {
	cp := *s
	cp.history = s.history.Clone()
	return &cp
}
