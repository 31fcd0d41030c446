package internal

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/starford/kyuubi/internal/mcpserver"
	"github.com/starford/kyuubi/internal/render"
	"github.com/starford/kyuubi/internal/transform"
)

// RunMCP serves the document over MCP on stdin/stdout until the client
// disconnects. Logs must not go to stdout; pass WithLogOutput(os.Stderr).
func RunMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	logger := app.logger()

	ws, err := app.openWorkspace(ctx, logger)
	if err != nil {
		return err
	}
	defer ws.close(context.Background(), logger)

	logger.Info("Starting MCP server", slog.String("document_id", app.config.Document.ID))
	srv := mcpserver.New(ws.holder, ws.renderer, app.version)
	if err := srv.ServeStdio(); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}

// Export writes the raw persisted document (or the sample) to w.
func Export(ctx context.Context, w io.Writer, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	logger := app.logger()

	ws, err := app.openWorkspace(ctx, logger)
	if err != nil {
		return err
	}
	defer ws.close(ctx, logger)

	if _, err := io.WriteString(w, ws.holder.Get()); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}

// PreviewOptions configures the terminal preview.
type PreviewOptions struct {
	Width int
	Style string // glamour standard style; empty picks one for the terminal
}

// Preview renders the persisted document for a terminal.
func Preview(ctx context.Context, w io.Writer, p PreviewOptions, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	logger := app.logger()

	ws, err := app.openWorkspace(ctx, logger)
	if err != nil {
		return err
	}
	defer ws.close(ctx, logger)

	out, err := render.Terminal(ws.holder.Snapshot().Rendered, p.Width, p.Style)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

// TransformText rewrites the markdown read from r and writes the result to
// w, optionally rendered to HTML with the configured renderer. It never
// touches the stored document.
func TransformText(r io.Reader, w io.Writer, html bool, cfg *Config) error {
	src, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("transform: read input: %w", err)
	}
	out := transform.Transform(string(src))
	if html {
		if out, err = render.New(cfg.Render.Options()).Render(out); err != nil {
			return err
		}
	}
	_, err = io.WriteString(w, out)
	return err
}
