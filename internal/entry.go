// Package internal provides the main application initialization and runtime logic.
package internal

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

	"github.com/starford/kyuubi/internal/api"
	"github.com/starford/kyuubi/internal/models"
	"github.com/starford/kyuubi/internal/sse"
	"github.com/starford/kyuubi/internal/storage"
	"github.com/starford/kyuubi/internal/watch"
	"github.com/starford/kyuubi/internal/web"
)

const shutdownTimeout = 10 * time.Second

// Run starts the editor server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := app.logger()

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("document_id", cfg.Document.ID),
		slog.String("storage_driver", cfg.Storage.Driver),
		slog.Bool("watch", cfg.Storage.Watch),
		slog.String("log_level", cfg.App.LogLevel.String()))

	ws, err := app.openWorkspace(ctx, logger)
	if err != nil {
		return err
	}

	// SSE broker fed by every document change.
	broker := sse.NewBroker(cfg.Events.OutlineThrottle)
	ws.holder.Subscribe(broker.PublishDocument)

	apiRouter := api.NewRouter(api.Config{
		Document:       ws.holder,
		Renderer:       ws.renderer,
		Events:         broker.Handler(ws.holder.Snapshot),
		ExportFilename: cfg.Document.ExportFilename,
		AuthEnabled:    cfg.Auth.AuthEnabled(),
		Token:          cfg.Auth.Token,
	})

	webHandler, err := web.NewHandler(web.Options{
		Title:          cfg.Document.Title,
		HighlightStyle: cfg.Render.HighlightStyle,
	})
	if err != nil {
		broker.Close()
		ws.close(ctx, logger)
		return fmt.Errorf("init web: %w", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", readyHandler(ws.holder.Snapshot, broker.ClientCount))

	r.Mount("/api", apiRouter)
	r.Handle("/", webHandler)
	r.Handle("/static/*", webHandler)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	if cfg.Storage.Watch {
		fsStore, ok := ws.store.(*storage.FS)
		if !ok {
			logger.Warn("watch needs the file driver, not watching")
		} else {
			g.Go(func() error {
				return watch.Watch(gCtx, ws.holder, watch.Options{
					Path:        fsStore.Path(),
					Store:       fsStore,
					LastWritten: ws.writer.LastWritten,
					Logger:      logger,
				})
			})
		}
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
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

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		// Closing the broker ends open event streams so Shutdown can drain.
		broker.Close()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		ws.close(shutdownCtx, logger)

		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// readyHandler reports the document revision and how many previews are
// connected.
func readyHandler(snapshot func() models.Document, clients func() int) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, `{"status":"ok","revision":%d,"clients":%d}`, snapshot().Revision, clients())
	}
}

// errShutdown cancels the group context so the watcher stops with the server.
var errShutdown = errors.New("shutdown")
