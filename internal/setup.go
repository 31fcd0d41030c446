package internal

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/starford/kyuubi/internal/document"
	"github.com/starford/kyuubi/internal/render"
	"github.com/starford/kyuubi/internal/storage"
)

func newApplication(opts []Option) (*application, error) {
	app := &application{logOutput: os.Stdout, version: "dev"}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

// logger builds the structured JSON logger and installs it as the default.
func (a *application) logger() *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(a.logOutput, &slog.HandlerOptions{
		Level: a.config.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// workspace is the document stack shared by every command.
type workspace struct {
	store    storage.Store
	writer   *storage.Writer
	renderer *render.Renderer
	holder   *document.Holder
}

func (a *application) openWorkspace(ctx context.Context, logger *slog.Logger) (*workspace, error) {
	cfg := a.config

	store, err := storage.Open(cfg.Storage.Options(cfg.Document.ID))
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	writer := storage.NewWriter(store, cfg.Storage.Debounce, logger)
	renderer := render.New(cfg.Render.Options())
	holder := document.NewHolder(cfg.Document.ID, writer, renderer, logger)
	holder.Load(ctx)

	return &workspace{store: store, writer: writer, renderer: renderer, holder: holder}, nil
}

// close flushes pending writes and releases the store.
func (w *workspace) close(ctx context.Context, logger *slog.Logger) {
	if err := w.holder.Close(ctx); err != nil {
		logger.Error("flush document failed", slog.String("error", err.Error()))
	}
	if err := w.store.Close(); err != nil {
		logger.Error("close storage failed", slog.String("error", err.Error()))
	}
}
