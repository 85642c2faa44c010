package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/yangwenmai/leetreview/internal/model"
)

var _ DocumentStore = (*Memory)(nil)

// Memory is an in-process DocumentStore for tests and dry runs.
// SaveErr, when set, is returned by every Save.
type Memory struct {
	mu      sync.Mutex
	items   []model.Item
	version int64
	saves   int

	SaveErr error
}

// NewMemory returns a Memory store seeded with items (version 1 when
// non-empty, 0 otherwise).
func NewMemory(items ...model.Item) *Memory {
	m := &Memory{}
	if len(items) > 0 {
		m.items = cloneItems(items)
		m.version = 1
	}
	return m
}

// Load implements DocumentReader.
func (m *Memory) Load(_ context.Context) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{Items: cloneItems(m.items), Version: m.version}, nil
}

// Save implements DocumentWriter.
func (m *Memory) Save(_ context.Context, items []model.Item, version int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return 0, m.SaveErr
	}
	if version != m.version {
		return 0, fmt.Errorf("%w: have v%d, stored v%d", ErrVersionConflict, version, m.version)
	}
	m.items = cloneItems(items)
	m.version++
	m.saves++
	return m.version, nil
}

// Saves returns the number of successful saves.
func (m *Memory) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

func cloneItems(items []model.Item) []model.Item {
	out := make([]model.Item, len(items))
	for i, it := range items {
		out[i] = it.Clone()
	}
	return out
}
