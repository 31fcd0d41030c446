package storage

import (
	"context"
	"sync"

	"github.com/starford/kyuubi/internal/apperr"
)

// Memory keeps the document in process memory. Useful for tests and
// throwaway sessions.
type Memory struct {
	mu    sync.Mutex
	text  string
	set   bool
	saves int
}

// NewMemory returns an empty memory store.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Load(_ context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.set {
		return "", apperr.ErrNotFound
	}
	return m.text, nil
}

func (m *Memory) Save(_ context.Context, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.text, m.set = text, true
	m.saves++
	return nil
}

func (m *Memory) Close() error { return nil }

// Saves reports how many times Save was called.
func (m *Memory) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
