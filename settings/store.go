// Package settings persists the user's API keys and custom model id.
package settings

import (
	"context"
	"errors"
	"sync"
)

// Persisted keys.
const (
	KeyOpenRouter  = "openrouter_api_key"
	KeyTavily      = "tavily_api_key"
	KeyCustomModel = "custom_model"
)

// ErrNotFound is returned by Get for a key that was never set.
var ErrNotFound = errors.New("setting not found")

// Store is a string key-value store.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Close() error
}

// MemoryStore keeps settings in process memory.
type MemoryStore struct {
	mu sync.RWMutex
	kv map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{kv: make(map[string]string)}
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.kv[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.kv[key] = value
	return nil
}

func (m *MemoryStore) Close() error { return nil }
