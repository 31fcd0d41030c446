package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/starford/kyuubi/internal/apperr"
)

func testSQLite(t *testing.T, id string) *SQLite {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "kyuubi-test.db"), id)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLite_LoadAbsent(t *testing.T) {
	s := testSQLite(t, "doc")
	if _, err := s.Load(context.Background()); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Load = %v, want ErrNotFound", err)
	}
}

func TestSQLite_RoundTrip(t *testing.T) {
	s := testSQLite(t, "doc")
	ctx := context.Background()
	for _, in := range roundTripInputs {
		if err := s.Save(ctx, in); err != nil {
			t.Fatalf("Save: %v", err)
		}
		got, err := s.Load(ctx)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if got != in {
			t.Errorf("got %q, want %q", got, in)
		}
	}

	var rows int
	if err := s.conn.QueryRow(`SELECT count(*) FROM documents`).Scan(&rows); err != nil {
		t.Fatal(err)
	}
	if rows != 1 {
		t.Errorf("rows = %d, want a single slot", rows)
	}
}

func TestSQLite_SlotsAreKeyed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shared.db")
	a, err := OpenSQLite(path, "a")
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()
	b, err := OpenSQLite(path, "b")
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	ctx := context.Background()
	_ = a.Save(ctx, "from a")
	if _, err := b.Load(ctx); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("b.Load = %v, want ErrNotFound", err)
	}
}
