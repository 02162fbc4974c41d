package store

import (
	"context"
	"sort"
	"strings"
	"sync"
)

type memoryStorage struct {
	mu     sync.RWMutex
	items  map[string]string
	closed bool
}

// NewMemoryStorage returns a process-local [KeyValueStorage]. Its contents
// are lost when the process exits; tests and the "memory" driver use it.
func NewMemoryStorage() KeyValueStorage {
	return &memoryStorage{items: make(map[string]string)}
}

func (m *memoryStorage) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return "", false, ErrStorageClosed
	}

	v, ok := m.items[key]
	return v, ok, nil
}

func (m *memoryStorage) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrStorageClosed
	}

	m.items[key] = value
	return nil
}

func (m *memoryStorage) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrStorageClosed
	}

	delete(m.items, key)
	return nil
}

func (m *memoryStorage) Keys(ctx context.Context, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrStorageClosed
	}

	return matchingKeys(m.items, prefix), nil
}

func (m *memoryStorage) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func matchingKeys(items map[string]string, prefix string) []string {
	keys := make([]string, 0, len(items))
	for k := range items {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}
