// Package storage persists the raw document text in a single key-value slot.
package storage

import "context"

// Store is the persistence boundary: one slot, keyed by a fixed document ID,
// holding the whole UTF-8 document.
type Store interface {
	// Load returns the persisted text, or apperr.ErrNotFound when the slot
	// has never been written.
	Load(ctx context.Context) (string, error)
	// Save replaces the slot content. The last Save wins.
	Save(ctx context.Context, text string) error
	// Close releases resources held by the store.
	Close() error
}

// Driver names accepted by Open.
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)
