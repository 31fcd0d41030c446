// Package web serves the editor page and its static assets.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/starford/kyuubi/internal/render"
)

//go:embed assets
var assets embed.FS

var pageTmpl = template.Must(template.ParseFS(assets, "assets/index.html"))

// Options configures the web handler.
type Options struct {
	Title          string
	HighlightStyle string
}

type pageData struct {
	Title    string
	ClientID string
}

// NewHandler returns a router serving "/" and "/static/*". Each page load
// gets a fresh client id so the tab can recognize its own edits when they
// come back over the event stream.
func NewHandler(opts Options) (http.Handler, error) {
	if opts.Title == "" {
		opts.Title = "Kyuubi Editor"
	}

	css, err := render.StyleSheet(opts.HighlightStyle)
	if err != nil {
		return nil, fmt.Errorf("web: %w", err)
	}
	static, err := fs.Sub(assets, "assets")
	if err != nil {
		return nil, fmt.Errorf("web: %w", err)
	}

	r := chi.NewRouter()
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		var buf bytes.Buffer
		data := pageData{Title: opts.Title, ClientID: uuid.NewString()}
		if err := pageTmpl.Execute(&buf, data); err != nil {
			slog.Error("render page failed", slog.String("error", err.Error()))
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		_, _ = w.Write(buf.Bytes())
	})
	r.Get("/static/chroma.css", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/css; charset=utf-8")
		_, _ = w.Write([]byte(css))
	})
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))
	return r, nil
}
