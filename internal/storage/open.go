package storage

import (
	"fmt"
	"path/filepath"

	"github.com/starford/kyuubi/internal/apperr"
)

// Options selects and configures a Store.
type Options struct {
	Driver     string
	Dir        string // file driver: data directory
	SQLitePath string // sqlite driver: database file
	DocumentID string
}

// Open builds the Store named by opts.Driver.
func Open(opts Options) (Store, error) {
	switch opts.Driver {
	case DriverFile:
		return NewFS(opts.Dir, opts.DocumentID)
	case DriverSQLite:
		path := opts.SQLitePath
		if path == "" {
			path = filepath.Join(opts.Dir, "kyuubi.db")
		}
		return OpenSQLite(path, opts.DocumentID)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("storage: unknown driver %q: %w", opts.Driver, apperr.ErrInvalidInput)
	}
}
