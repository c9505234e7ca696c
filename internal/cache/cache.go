// Package cache stores computed curriculum sequences so that unchanged trees
// are not re-walked on every request.
package cache

import (
	"context"
	"slices"
	"sync"
)

// Memory is an in-process sequence cache.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]int
}

// NewMemory creates an empty in-process cache.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]int)}
}

// Get returns the cached node IDs for key.
func (m *Memory) Get(_ context.Context, key string) ([]int, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return slices.Clone(ids), true, nil
}

// Set stores node IDs under key.
func (m *Memory) Set(_ context.Context, key string, ids []int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = slices.Clone(ids)
	return nil
}

// Len reports the number of cached sequences.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
