package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/corporealshift/driftwatcher/internal/api"
	"github.com/corporealshift/driftwatcher/internal/drift"
	"github.com/corporealshift/driftwatcher/internal/sse"
)

// Serve runs the local drift dashboard: a JSON API over the scan
// engine, an SSE stream fed by the filesystem monitor, and graceful
// shutdown on SIGINT/SIGTERM.
func Serve(ctx context.Context, env *Env, target string) error {
	cfg := env.Config

	// Server mode logs structured JSON to stdout.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.Level(),
	}))
	slog.SetDefault(logger)
	env.Log = logger

	eng := env.Engine()
	root := watchRoot(target, cfg.Scan.RootMarker)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.Serve.HTTP.Address()),
		slog.String("target", target),
		slog.String("watch_root", root),
		slog.String("log_level", cfg.App.LogLevel))

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)

	// API routes under /api; /api/events is the broker itself.
	apiRouter := api.NewRouter(eng, target, cfg.Serve.Auth.AuthEnabled(), cfg.Serve.Auth.Token, broker)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoint (unauthenticated).
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.Serve.HTTP.Address(),
		Handler: r,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Filesystem monitor feeding the SSE broker.
	mon := drift.NewMonitor(eng, target, root, logger)
	g.Go(func() error {
		return mon.Run(gCtx, func(ev drift.ChangeEvent, sum drift.Summary) {
			broker.PublishDriftEvent(ev, sum)
		})
	})

	// HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.Serve.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		// Close SSE streams first so Shutdown is not held open by them.
		broker.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}
