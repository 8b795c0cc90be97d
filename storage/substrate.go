package storage

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned by a Substrate when a key holds no value.
var ErrNotFound = errors.New("key not found")

// Substrate is the durable key-value store collections are written to.
type Substrate interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// MemorySubstrate keeps values in process memory. Nothing survives a restart.
type MemorySubstrate struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemorySubstrate() *MemorySubstrate {
	return &MemorySubstrate{data: make(map[string][]byte)}
}

func (m *MemorySubstrate) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *MemorySubstrate) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}
