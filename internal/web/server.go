package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jaminalder/tic-tac-toe-timetravel/internal/app"
	"github.com/jaminalder/tic-tac-toe-timetravel/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options tune the web adapter. The zero value is usable.
type Options struct {
	Logger *slog.Logger
	// ShowErrors renders rejected moves as an alert; by default they are ignored.
	ShowErrors        bool
	HeartbeatInterval time.Duration
	CookieTTL         time.Duration
	// Gatherer enables GET /metrics when set.
	Gatherer prometheus.Gatherer
}

// NewServer wires routes and returns an http.Handler. It also installs the
// board fragment as the service's broadcast renderer so SSE subscribers get
// the same markup as htmx swaps.
func NewServer(s *app.Service, opts Options) http.Handler {
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	if opts.HeartbeatInterval <= 0 {
		opts.HeartbeatInterval = 15 * time.Second
	}
	h := &handlers{
		svc:        s,
		tpl:        loadTemplates(),
		log:        opts.Logger.With("component", "web"),
		showErrors: opts.ShowErrors,
		heartbeat:  opts.HeartbeatInterval,
		cookieTTL:  opts.CookieTTL,
	}
	s.SetRenderer(h.renderSession)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(h.log))
	r.Use(middleware.Recoverer)

	r.Get("/", h.index)
	r.Post("/game", h.create)
	r.Route("/game/{id}", func(r chi.Router) {
		r.Get("/", h.view)
		r.Get("/state", h.state)
		r.Get("/events", h.events)
		r.Post("/play", h.play)
		r.Post("/jump", h.jump)
		r.Post("/restart", h.restart)
		r.Post("/sort", h.sort)
	})
	if opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// requestLogger logs one line per request once the response is written.
func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				log.Debug("http request",
					"request_id", middleware.GetReqID(r.Context()),
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"duration", time.Since(start),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
