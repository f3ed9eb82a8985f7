package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jaminalder/tic-tac-toe-timetravel/internal/app"
	"github.com/jaminalder/tic-tac-toe-timetravel/internal/config"
	"github.com/jaminalder/tic-tac-toe-timetravel/internal/logging"
	"github.com/jaminalder/tic-tac-toe-timetravel/internal/web"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the game over HTTP",
	Long:  `Starts the HTTP server with the htmx board, an SSE redraw stream and /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		conf := config.MustLoad(path)
		if port, _ := cmd.Flags().GetString("port"); port != "" {
			conf.HTTP.Port = port
		}
		logger := logging.New(conf.LogLevel, conf.LogFormat, os.Stderr)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runServer(ctx, logger, conf)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "", "Port to listen on (overrides config)")
}

// runServer serves until ctx is done, then shuts down gracefully.
func runServer(ctx context.Context, logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	opts := []app.Option{app.WithLogger(logger)}
	var gatherer prometheus.Gatherer
	if conf.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		opts = append(opts, app.WithMetrics(app.NewMetrics(reg)))
		gatherer = reg
	}
	svc := app.NewService(opts...)

	handler := web.NewServer(svc, web.Options{
		Logger:            logger,
		ShowErrors:        conf.Game.ShowErrors,
		HeartbeatInterval: conf.HTTP.HeartbeatInterval,
		CookieTTL:         conf.Game.SessionTTL,
		Gatherer:          gatherer,
	})
	srv := &http.Server{
		Addr:    conf.HTTP.Addr(),
		Handler: handler,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	if conf.Game.PruneEnabled() {
		go svc.RunPruner(ctx, conf.Game.PruneInterval, conf.Game.SessionTTL)
	} else {
		log.Info("session pruning disabled")
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "addr", srv.Addr, "metrics", conf.Metrics.Enabled)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("HTTP server error: %w", err)
	case <-ctx.Done():
		log.Info("Shutting down")
		// Give outstanding requests a deadline for completion.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), conf.HTTP.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown did not complete", "timeout", conf.HTTP.ShutdownTimeout, "error", err)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("close server: %w", err)
			}
		}
		log.Info("Server stopped")
		return nil
	}
}
