package cache

import (
	"context"
	"sync"

	"github.com/golang/groupcache/lru"
)

// DefaultCapacity bounds the in-process advisor cache.
const DefaultCapacity = 100

// Memory is a bounded in-process cache. The oldest unused entry is evicted first.
// Thread-safe for concurrent access.
type Memory struct {
	mu    sync.Mutex
	items *lru.Cache
}

// NewMemory creates an in-process cache holding at most capacity entries.
func NewMemory(capacity int) *Memory {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Memory{items: lru.New(capacity)}
}

// Get returns a copy of the cached value.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.items.Get(key)
	if !ok {
		return nil, false
	}
	payload := value.([]byte)
	return append([]byte(nil), payload...), true
}

// Set stores a copy of value under key.
func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items.Add(key, append([]byte(nil), value...))
	return nil
}

// Len reports the number of cached entries.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.items.Len()
}
