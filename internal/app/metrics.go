package app

import (
	"errors"
	"strings"

	"github.com/jaminalder/tic-tac-toe-timetravel/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the service counters exposed on /metrics.
type Metrics struct {
	SessionsCreated prometheus.Counter
	SessionsActive  prometheus.Gauge
	Moves           *prometheus.CounterVec
	MovesRejected   *prometheus.CounterVec
	Jumps           prometheus.Counter
	Restarts        prometheus.Counter
	GamesFinished   *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SessionsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tictactoe_sessions_created_total",
			Help: "Total number of game sessions created",
		}),
		SessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tictactoe_sessions_active",
			Help: "Number of sessions currently held in memory",
		}),
		Moves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tictactoe_moves_total",
			Help: "Total number of accepted moves",
		}, []string{"player"}),
		MovesRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tictactoe_moves_rejected_total",
			Help: "Total number of rejected moves",
		}, []string{"reason"}),
		Jumps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tictactoe_jumps_total",
			Help: "Total number of history jumps",
		}),
		Restarts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tictactoe_restarts_total",
			Help: "Total number of restarts",
		}),
		GamesFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tictactoe_games_finished_total",
			Help: "Total number of moves that decided a game",
		}, []string{"outcome"}),
	}
	if reg != nil {
		reg.MustRegister(m.SessionsCreated, m.SessionsActive, m.Moves, m.MovesRejected,
			m.Jumps, m.Restarts, m.GamesFinished)
	}
	return m
}

func (m *Metrics) moveAccepted(player domain.Cell, out domain.Outcome) {
	if m == nil {
		return
	}
	m.Moves.WithLabelValues(player.String()).Inc()
	switch out.Status {
	case domain.Win:
		m.GamesFinished.WithLabelValues(strings.ToLower(out.Winner.String())).Inc()
	case domain.Draw:
		m.GamesFinished.WithLabelValues("draw").Inc()
	}
}

func (m *Metrics) moveRejected(err error) {
	if m == nil {
		return
	}
	m.MovesRejected.WithLabelValues(rejectReason(err)).Inc()
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrCellOccupied):
		return "occupied"
	case errors.Is(err, domain.ErrGameOver):
		return "game_over"
	case errors.Is(err, domain.ErrOutOfBounds):
		return "out_of_bounds"
	case errors.Is(err, domain.ErrInvalidPlayer):
		return "invalid_player"
	default:
		return "other"
	}
}
