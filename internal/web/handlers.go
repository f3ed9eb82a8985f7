package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jaminalder/tic-tac-toe-timetravel/internal/app"
	"github.com/jaminalder/tic-tac-toe-timetravel/internal/domain"
	"github.com/jaminalder/tic-tac-toe-timetravel/internal/history"
	"github.com/jaminalder/tic-tac-toe-timetravel/internal/view"
)

type handlers struct {
	svc        *app.Service
	tpl        *templates
	log        *slog.Logger
	showErrors bool
	heartbeat  time.Duration
	cookieTTL  time.Duration
}

func (h *handlers) renderBoard(s *app.Session, errMsg string) []byte {
	page := view.Build(s)
	page.Error = errMsg
	return renderTemplate(h.log, h.tpl.board, "", page)
}

// renderSession is the broadcast renderer handed to the service.
func (h *handlers) renderSession(s *app.Session) []byte {
	return h.renderBoard(s, "")
}

func (h *handlers) index(w http.ResponseWriter, r *http.Request) {
	if id := sessionFromCookie(r); id != "" {
		if _, ok := h.svc.Get(id); ok {
			http.Redirect(w, r, "/game/"+id, http.StatusSeeOther)
			return
		}
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(renderTemplate(h.log, h.tpl.index, "base", nil))
}

func (h *handlers) create(w http.ResponseWriter, r *http.Request) {
	s := h.svc.CreateSession()
	setSessionCookie(w, s.ID, h.cookieTTL)
	http.Redirect(w, r, "/game/"+s.ID, http.StatusSeeOther)
}

func (h *handlers) view(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s, ok := h.svc.Get(id)
	if !ok {
		http.NotFound(w, r)
		return
	}
	setSessionCookie(w, s.ID, h.cookieTTL)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	// Render page with embedded board container
	_, _ = w.Write(renderTemplate(h.log, h.tpl.game, "base", view.Build(s)))
}

func (h *handlers) play(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	_ = r.ParseForm()
	idx, err := cellIndex(r)
	var s *app.Session
	if err == nil {
		s, err = h.svc.Play(id, idx)
	}
	h.respond(w, r, id, s, err)
}

func (h *handlers) jump(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	_ = r.ParseForm()
	move, err := strconv.Atoi(r.Form.Get("move"))
	var s *app.Session
	if err != nil {
		err = fmt.Errorf("%w: %v", history.ErrOutOfRange, err)
	} else {
		s, err = h.svc.JumpTo(id, move)
	}
	h.respond(w, r, id, s, err)
}

func (h *handlers) restart(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s, err := h.svc.Restart(id)
	h.respond(w, r, id, s, err)
}

func (h *handlers) sort(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s, err := h.svc.ToggleSort(id)
	h.respond(w, r, id, s, err)
}

// respond writes the board fragment after a command. Rejected commands redraw
// the unchanged board and only mention the reason when showErrors is set.
func (h *handlers) respond(w http.ResponseWriter, r *http.Request, id string, s *app.Session, err error) {
	if errors.Is(err, app.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	var errMsg string
	if err != nil {
		h.log.Debug("command ignored", "session", id, "path", r.URL.Path, "error", err)
		if s == nil {
			if cur, ok := h.svc.Get(id); ok {
				s = cur
			}
		}
		if h.showErrors {
			errMsg = errorMessage(err)
		}
	}
	if s == nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(h.renderBoard(s, errMsg))
}

func errorMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrCellOccupied):
		return "Cell is occupied"
	case errors.Is(err, domain.ErrOutOfBounds):
		return "Out of bounds"
	case errors.Is(err, domain.ErrGameOver):
		return "Game is over"
	case errors.Is(err, history.ErrOutOfRange):
		return "No such move"
	default:
		return "Invalid move"
	}
}

// cellIndex reads the target cell either as "i" or as "r" and "c".
func cellIndex(r *http.Request) (int, error) {
	if v := r.Form.Get("i"); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", domain.ErrOutOfBounds, err)
		}
		return i, nil
	}
	row, errR := strconv.Atoi(r.Form.Get("r"))
	col, errC := strconv.Atoi(r.Form.Get("c"))
	if err := errors.Join(errR, errC); err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrOutOfBounds, err)
	}
	return domain.IndexOf(row, col)
}

type stateResponse struct {
	ID          string    `json:"id"`
	Board       [9]string `json:"board"`
	Status      string    `json:"status"`
	Winner      string    `json:"winner,omitempty"`
	Line        []int     `json:"line,omitempty"`
	NextPlayer  string    `json:"next_player"`
	CurrentMove int       `json:"current_move"`
	Moves       []string  `json:"moves"`
	SortOrder   string    `json:"sort_order"`
}

func (h *handlers) state(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s, ok := h.svc.Get(id)
	if !ok {
		http.NotFound(w, r)
		return
	}
	out := s.Outcome()
	resp := stateResponse{
		ID:          s.ID,
		Status:      out.Status.String(),
		NextPlayer:  s.NextPlayer().String(),
		CurrentMove: s.CurrentMove(),
		Moves:       s.HistoryDescriptions(),
		SortOrder:   s.SortOrder().String(),
	}
	for i, c := range s.CurrentGrid() {
		resp.Board[i] = c.String()
	}
	if out.Status == domain.Win {
		resp.Winner = out.Winner.String()
		resp.Line = out.Line[:]
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.log.Error("encode state", "session", id, "error", err)
	}
}

func (h *handlers) events(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.svc.Get(id); !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	// In tests or non-EventSource requests, just acknowledge headers and return
	if r.Header.Get("Accept") != "text/event-stream" {
		w.WriteHeader(http.StatusOK)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		w.WriteHeader(http.StatusOK)
		return
	}
	ctx := r.Context()
	ch, unsub, err := h.svc.Subscribe(ctx, id)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer unsub()
	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()
	// Initial flush of headers
	w.WriteHeader(http.StatusOK)
	flusher.Flush()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = io.WriteString(w, ": ping\n\n")
			flusher.Flush()
		case b, ok := <-ch:
			if !ok {
				return
			}
			writeEvent(w, "board", b)
			flusher.Flush()
		}
	}
}

// writeEvent frames payload as one SSE event, one data line per payload line.
func writeEvent(w io.Writer, event string, payload []byte) {
	_, _ = fmt.Fprintf(w, "event: %s\n", event)
	for _, line := range bytes.Split(payload, []byte("\n")) {
		_, _ = fmt.Fprintf(w, "data: %s\n", line)
	}
	_, _ = io.WriteString(w, "\n")
}
