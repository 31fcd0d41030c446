// Package testutil provides shared test helpers for setting up documents
// and stores.
package testutil

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/starford/kyuubi/internal/document"
	"github.com/starford/kyuubi/internal/render"
	"github.com/starford/kyuubi/internal/storage"
)

// DocumentID is the slot id used by test holders.
const DocumentID = "kyuubi-content"

// Logger returns a logger that drops everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Renderer returns a sanitizing renderer with the default extensions.
func Renderer() *render.Renderer {
	return render.New(render.Options{Sanitize: true})
}

// Holder creates a loaded document holder backed by a memory store with
// synchronous writes.
func Holder(t *testing.T) (*document.Holder, *storage.Memory) {
	t.Helper()
	store := storage.NewMemory()
	h, _ := HolderOn(t, store)
	return h, store
}

// HolderOn creates a loaded document holder on store and returns it with
// its synchronous writer.
func HolderOn(t *testing.T, store storage.Store) (*document.Holder, *storage.Writer) {
	t.Helper()
	w := storage.NewWriter(store, 0, Logger())
	h := document.NewHolder(DocumentID, w, Renderer(), Logger())
	h.Load(context.Background())
	t.Cleanup(func() { _ = h.Close(context.Background()) })
	return h, w
}

// FileStore creates a file store in a temporary directory.
func FileStore(t *testing.T) (string, *storage.FS) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir, DocumentID)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return dir, store
}
