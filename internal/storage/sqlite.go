package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/kyuubi/internal/apperr"
	"github.com/starford/kyuubi/internal/checksum"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS documents (
	id         TEXT PRIMARY KEY,
	content    TEXT NOT NULL DEFAULT '',
	checksum   TEXT NOT NULL DEFAULT '',
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// SQLite stores the document as one row of the documents table.
type SQLite struct {
	conn *sql.DB
	id   string
}

// OpenSQLite opens (or creates) the database at dsn and applies the schema.
func OpenSQLite(dsn, id string) (*SQLite, error) {
	if id == "" {
		return nil, fmt.Errorf("storage: document id is required: %w", apperr.ErrInvalidInput)
	}
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("storage: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("storage: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("storage: apply schema: %w", err)
	}
	return &SQLite{conn: conn, id: id}, nil
}

// Load returns the stored content for the document ID.
func (s *SQLite) Load(ctx context.Context) (string, error) {
	var content string
	err := s.conn.QueryRowContext(ctx, `SELECT content FROM documents WHERE id = ?`, s.id).Scan(&content)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", apperr.ErrNotFound
		}
		return "", fmt.Errorf("storage: load: %w", err)
	}
	return content, nil
}

// Save upserts the document row.
func (s *SQLite) Save(ctx context.Context, text string) error {
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO documents (id, content, checksum, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			content    = excluded.content,
			checksum   = excluded.checksum,
			updated_at = excluded.updated_at
	`, s.id, text, checksum.Sum(text), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("storage: save: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.conn.Close()
}
