package app

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/jaminalder/tic-tac-toe-timetravel/internal/logging"
)

// Errors exposed by the service layer.
var ErrNotFound = errors.New("session not found")

// Renderer turns a session snapshot into the payload pushed to subscribers.
type Renderer func(*Session) []byte

// subscriberBuffer is how many undelivered payloads a subscriber may hold
// before it is dropped.
const subscriberBuffer = 16

type subscriber struct {
	ch        chan []byte
	closeOnce sync.Once
}

func (s *subscriber) close() { s.closeOnce.Do(func() { close(s.ch) }) }

// Service keeps sessions in memory and serialises every change to them.
type Service struct {
	mu       sync.Mutex
	sessions map[string]*Session
	subs     map[string]map[*subscriber]struct{}
	render   Renderer
	log      *slog.Logger
	metrics  *Metrics
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithRenderer sets the broadcast renderer.
func WithRenderer(r Renderer) Option { return func(s *Service) { s.render = r } }

func WithLogger(l *slog.Logger) Option { return func(s *Service) { s.log = l } }

func WithMetrics(m *Metrics) Option { return func(s *Service) { s.metrics = m } }

// WithClock overrides time.Now, mainly for pruning tests.
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// NewService creates a service. Without a renderer broadcasts carry no payload.
func NewService(opts ...Option) *Service {
	s := &Service{
		sessions: make(map[string]*Session),
		subs:     make(map[string]map[*subscriber]struct{}),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.render == nil {
		s.render = func(*Session) []byte { return nil }
	}
	if s.log == nil {
		s.log = logging.NewNop()
	}
	s.log = s.log.With("component", "service")
	return s
}

// SetRenderer replaces the broadcast renderer function.
func (s *Service) SetRenderer(r Renderer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r == nil {
		s.render = func(*Session) []byte { return nil }
		return
	}
	s.render = r
}

// CreateSession registers a new game at its start position.
func (s *Service) CreateSession() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := NewSession(newSessionID(), s.now())
	s.sessions[sess.ID] = sess
	if s.metrics != nil {
		s.metrics.SessionsCreated.Inc()
		s.metrics.SessionsActive.Set(float64(len(s.sessions)))
	}
	s.log.Info("session created", "session", sess.ID)
	return sess.Clone()
}

// Get returns a copy of the session if present.
func (s *Service) Get(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	return sess.Clone(), true
}

// Play applies the next player's move at index.
func (s *Service) Play(id string, index int) (*Session, error) {
	return s.apply(id, "play", func(sess *Session) error {
		player := sess.NextPlayer()
		if err := sess.Play(index); err != nil {
			s.metrics.moveRejected(err)
			return err
		}
		s.metrics.moveAccepted(player, sess.Outcome())
		return nil
	})
}

// JumpTo moves the session's display pointer.
func (s *Service) JumpTo(id string, move int) (*Session, error) {
	return s.apply(id, "jump", func(sess *Session) error {
		if err := sess.JumpTo(move); err != nil {
			return err
		}
		if s.metrics != nil {
			s.metrics.Jumps.Inc()
		}
		return nil
	})
}

func (s *Service) Restart(id string) (*Session, error) {
	return s.apply(id, "restart", func(sess *Session) error {
		sess.Restart()
		if s.metrics != nil {
			s.metrics.Restarts.Inc()
		}
		return nil
	})
}

func (s *Service) ToggleSort(id string) (*Session, error) {
	return s.apply(id, "sort", func(sess *Session) error {
		sess.ToggleSort()
		return nil
	})
}

// apply runs fn on the session under the lock and broadcasts the result. On
// error nothing is broadcast and a copy of the unchanged session is returned
// alongside the error so callers can redraw.
func (s *Service) apply(id, op string, fn func(*Session) error) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	if err := fn(sess); err != nil {
		s.log.Debug("operation rejected", "session", id, "op", op, "error", err)
		return sess.Clone(), err
	}
	sess.Updated = s.now()

	cp := sess.Clone()
	s.log.Debug("operation applied", "session", id, "op", op, "move", cp.CurrentMove())
	s.broadcastLocked(id, s.render(cp))
	return cp, nil
}

// broadcastLocked fans payload out while s.mu is held, so subscribers see
// transitions in the order they were applied. Sends never block; a
// subscriber with a full buffer is closed and dropped.
func (s *Service) broadcastLocked(id string, payload []byte) {
	dropped := 0
	for sub := range s.subs[id] {
		select {
		case sub.ch <- payload:
		default:
			sub.close()
			delete(s.subs[id], sub)
			dropped++
		}
	}
	if dropped == 0 {
		return
	}
	if len(s.subs[id]) == 0 {
		delete(s.subs, id)
	}
	s.log.Warn("dropped slow subscribers", "session", id, "count", dropped)
}

// Subscribe registers a subscriber for a session. The channel is closed when
// ctx is done, when unsubscribe is called, or when the subscriber falls behind.
func (s *Service) Subscribe(ctx context.Context, id string) (<-chan []byte, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return nil, func() {}, ErrNotFound
	}
	set := s.subs[id]
	if set == nil {
		set = make(map[*subscriber]struct{})
		s.subs[id] = set
	}
	sub := &subscriber{ch: make(chan []byte, subscriberBuffer)}
	set[sub] = struct{}{}

	unsubOnce := &sync.Once{}
	unsub := func() {
		unsubOnce.Do(func() {
			s.mu.Lock()
			if set, ok := s.subs[id]; ok {
				delete(set, sub)
				if len(set) == 0 {
					delete(s.subs, id)
				}
			}
			s.mu.Unlock()
			sub.close()
		})
	}
	go func() {
		<-ctx.Done()
		unsub()
	}()
	return sub.ch, unsub, nil
}

// Prune removes sessions that have not changed for longer than ttl. Sessions
// with a live subscriber are kept. It returns the number of sessions removed.
func (s *Service) Prune(ttl time.Duration) int {
	s.mu.Lock()
	cutoff := s.now().Add(-ttl)
	removed := 0
	for id, sess := range s.sessions {
		if sess.Updated.After(cutoff) || len(s.subs[id]) > 0 {
			continue
		}
		delete(s.sessions, id)
		removed++
	}
	if s.metrics != nil {
		s.metrics.SessionsActive.Set(float64(len(s.sessions)))
	}
	s.mu.Unlock()

	if removed > 0 {
		s.log.Info("pruned idle sessions", "count", removed)
	}
	return removed
}

// RunPruner calls Prune every interval until ctx is done.
func (s *Service) RunPruner(ctx context.Context, interval, ttl time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Prune(ttl)
		}
	}
}
