package storage

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/starford/kyuubi/internal/checksum"
)

const writeTimeout = 5 * time.Second

// Writer gives a Store fire-and-forget semantics. Save never reports an
// error to the caller: a failed write is logged and the text stays pending
// until the next Save or Flush. With a positive debounce, rapid saves are
// coalesced and only the newest text is written after a quiet period.
type Writer struct {
	store    Store
	logger   *slog.Logger
	debounce time.Duration

	mu          sync.Mutex
	pending     string
	dirty       bool
	timer       *time.Timer
	lastWritten string

	// writeMu serializes store writes so an older text never lands after a
	// newer one.
	writeMu sync.Mutex
}

// NewWriter wraps store. A zero debounce writes synchronously on every Save.
func NewWriter(store Store, debounce time.Duration, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{store: store, debounce: debounce, logger: logger}
}

// Store returns the wrapped store.
func (w *Writer) Store() Store {
	return w.store
}

// Save schedules text to be persisted.
func (w *Writer) Save(text string) {
	w.mu.Lock()
	w.pending, w.dirty = text, true
	if w.debounce <= 0 {
		w.mu.Unlock()
		_ = w.write(context.Background())
		return
	}
	if w.timer == nil {
		w.timer = time.AfterFunc(w.debounce, func() {
			_ = w.write(context.Background())
		})
	} else {
		w.timer.Reset(w.debounce)
	}
	w.mu.Unlock()
}

// Flush writes any pending text immediately.
func (w *Writer) Flush(ctx context.Context) error {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return w.write(ctx)
}

// Pending reports whether text is waiting to be written.
func (w *Writer) Pending() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.dirty
}

// LastWritten returns the checksum of the most recent successful write, or
// "" if nothing has been written yet.
func (w *Writer) LastWritten() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastWritten
}

func (w *Writer) write(ctx context.Context) error {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()

	w.mu.Lock()
	if !w.dirty {
		w.mu.Unlock()
		return nil
	}
	text := w.pending
	w.dirty = false
	w.mu.Unlock()

	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	if err := w.store.Save(wctx, text); err != nil {
		w.mu.Lock()
		// Keep the text for a retry unless a newer Save already replaced it.
		if !w.dirty {
			w.pending, w.dirty = text, true
		}
		w.mu.Unlock()
		w.logger.Warn("document save failed", slog.String("error", err.Error()))
		return err
	}

	sum := checksum.Sum(text)
	w.mu.Lock()
	w.lastWritten = sum
	w.mu.Unlock()
	w.logger.Debug("document saved", slog.Int("bytes", len(text)), slog.String("checksum", sum))
	return nil
}
