// Package document owns the single edited note. It keeps the raw text and
// its derived forms consistent: every mutation persists the text, reruns the
// transform and the renderer, then notifies subscribers with a snapshot.
package document

import (
	"context"
	_ "embed"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/starford/kyuubi/internal/apperr"
	"github.com/starford/kyuubi/internal/checksum"
	"github.com/starford/kyuubi/internal/models"
	"github.com/starford/kyuubi/internal/render"
	"github.com/starford/kyuubi/internal/storage"
	"github.com/starford/kyuubi/internal/transform"
)

//go:embed sample.md
var sample string

// Sample returns the built-in document shown when nothing is persisted.
func Sample() string {
	return sample
}

// Renderer turns transformed markdown into HTML.
type Renderer interface {
	Render(markdown string) (string, error)
}

// Listener receives a snapshot after every mutation.
type Listener func(models.Document)

// Holder is the document state holder. Reads are concurrent; mutations are
// serialized so each edit runs to completion before the next starts.
type Holder struct {
	id       string
	writer   *storage.Writer
	renderer Renderer
	logger   *slog.Logger

	setMu     sync.Mutex // serializes Load and Set
	persisted bool
	listeners []Listener

	mu  sync.RWMutex
	doc models.Document
}

// NewHolder creates a Holder for the document id. The holder starts with
// the built-in sample until Load is called.
func NewHolder(id string, writer *storage.Writer, renderer Renderer, logger *slog.Logger) *Holder {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Holder{id: id, writer: writer, renderer: renderer, logger: logger}
	h.doc = h.build(sample, 0, models.OriginLoad)
	return h
}

// Subscribe registers fn to be called with each new snapshot.
func (h *Holder) Subscribe(fn Listener) {
	h.setMu.Lock()
	h.listeners = append(h.listeners, fn)
	h.setMu.Unlock()
}

// Load reads the persisted text. An absent slot or a failed read yields the
// built-in sample; Load never writes.
func (h *Holder) Load(ctx context.Context) models.Document {
	h.setMu.Lock()
	defer h.setMu.Unlock()

	text, err := h.writer.Store().Load(ctx)
	switch {
	case err == nil:
		h.persisted = true
	case errors.Is(err, apperr.ErrNotFound):
		text = sample
		h.persisted = false
		h.logger.Info("no saved document, using sample", slog.String("id", h.id))
	default:
		text = sample
		h.persisted = false
		h.logger.Warn("document load failed, using sample",
			slog.String("id", h.id),
			slog.String("error", err.Error()),
		)
	}

	doc := h.build(text, 0, models.OriginLoad)
	h.publish(doc)
	return doc
}

// Get returns the current raw text.
func (h *Holder) Get() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.doc.Raw
}

// Snapshot returns a copy of the current document state.
func (h *Holder) Snapshot() models.Document {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.doc
}

// Set replaces the raw text. The text is handed to the writer first, then
// transformed and rendered; the new snapshot becomes visible to readers and
// listeners only once all derived fields match it. Setting the text already
// persisted is a no-op that returns the current snapshot.
func (h *Holder) Set(ctx context.Context, text, origin string) models.Document {
	h.setMu.Lock()
	defer h.setMu.Unlock()

	current := h.Snapshot()
	if h.persisted && text == current.Raw {
		return current
	}

	h.writer.Save(text)
	h.persisted = true

	doc := h.build(text, current.Revision+1, origin)
	h.publish(doc)
	h.logger.DebugContext(ctx, "document updated",
		slog.Uint64("revision", doc.Revision),
		slog.String("origin", origin),
		slog.Int("bytes", len(text)),
	)

	for _, fn := range h.listeners {
		fn(doc)
	}
	return doc
}

// Close flushes any pending write.
func (h *Holder) Close(ctx context.Context) error {
	return h.writer.Flush(ctx)
}

func (h *Holder) build(text string, revision uint64, origin string) models.Document {
	rendered := transform.Transform(text)
	return models.Document{
		ID:        h.id,
		Raw:       text,
		Rendered:  rendered,
		HTML:      h.renderHTML(rendered),
		Revision:  revision,
		Checksum:  checksum.Sum(text),
		Origin:    origin,
		UpdatedAt: time.Now().UTC(),
	}
}

func (h *Holder) renderHTML(rendered string) string {
	if h.renderer == nil {
		return render.Fallback(rendered)
	}
	out, err := h.renderer.Render(rendered)
	if err != nil {
		h.logger.Error("render failed", slog.String("error", err.Error()))
		return render.Fallback(rendered)
	}
	return out
}

func (h *Holder) publish(doc models.Document) {
	h.mu.Lock()
	h.doc = doc
	h.mu.Unlock()
}
