// Package watch reloads the file-backed document when it is edited outside
// the editor.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/kyuubi/internal/checksum"
	"github.com/starford/kyuubi/internal/models"
	"github.com/starford/kyuubi/internal/storage"
)

const defaultDebounce = 100 * time.Millisecond

// Target receives text read from disk.
type Target interface {
	Get() string
	Set(ctx context.Context, text, origin string) models.Document
}

// Options configures Watch.
type Options struct {
	// Path is the document file. Its directory is watched so atomic
	// replacements (rename over the file) are seen.
	Path  string
	Store storage.Store
	// LastWritten returns the checksum of our own latest write, which is
	// ignored when it shows up as a file event.
	LastWritten func() string
	Debounce    time.Duration
	Logger      *slog.Logger
}

// Watch processes file events until ctx is cancelled. External edits are
// loaded into target with origin "disk"; the last write wins.
func Watch(ctx context.Context, target Target, opts Options) error {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Debounce <= 0 {
		opts.Debounce = defaultDebounce
	}
	logger := opts.Logger
	path := filepath.Clean(opts.Path)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch: add %s: %w", filepath.Dir(path), err)
	}
	logger.Info("watcher: started", slog.String("path", path))

	var reloadTimer *time.Timer
	var reloadCh <-chan time.Time
	scheduleReload := func() {
		if reloadTimer == nil {
			reloadTimer = time.NewTimer(opts.Debounce)
			reloadCh = reloadTimer.C
		} else {
			reloadTimer.Reset(opts.Debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reloadTimer != nil {
				reloadTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-reloadCh:
			reload(ctx, target, opts)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != path {
				continue
			}
			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				scheduleReload()
			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				// The next save recreates the file.
				logger.Warn("watcher: document file removed", slog.String("path", path))
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

func reload(ctx context.Context, target Target, opts Options) {
	text, err := opts.Store.Load(ctx)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			opts.Logger.Warn("watcher: read failed", slog.String("error", err.Error()))
		}
		return
	}
	if opts.LastWritten != nil && checksum.Sum(text) == opts.LastWritten() {
		return
	}
	if text == target.Get() {
		return
	}
	doc := target.Set(ctx, text, models.OriginDisk)
	opts.Logger.Info("watcher: reloaded external edit", slog.Uint64("revision", doc.Revision))
}
