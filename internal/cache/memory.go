package cache

import (
	"context"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultMemoryEntries = 10_000

type entry struct {
	value    string
	deadline time.Time
}

func (e entry) liveAt(now time.Time) bool {
	return !now.After(e.deadline)
}

// MemoryProvider is a bounded in-process Provider. Least recently used keys
// are evicted once it is full, and expired keys are dropped on access.
type MemoryProvider struct {
	mu      sync.Mutex
	entries *lru.Cache[string, entry]
	now     func() time.Time
}

func NewMemoryProvider() (*MemoryProvider, error) {
	entries, err := lru.New[string, entry](defaultMemoryEntries)
	if err != nil {
		return nil, err
	}
	return &MemoryProvider{entries: entries, now: time.Now}, nil
}

func (m *MemoryProvider) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.live(key)
	if !ok {
		return "", ErrNotFound
	}
	return e.value, nil
}

func (m *MemoryProvider) Set(_ context.Context, key string, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.put(key, value, ttl)
	return nil
}

func (m *MemoryProvider) SetIfAbsent(_ context.Context, key string, value string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.live(key); ok {
		return false, nil
	}
	m.put(key, value, ttl)
	return true, nil
}

func (m *MemoryProvider) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries.Remove(key)
	return nil
}

func (m *MemoryProvider) Close() error {
	return nil
}

// live must be called with mu held.
func (m *MemoryProvider) live(key string) (entry, bool) {
	e, ok := m.entries.Get(key)
	if !ok {
		return entry{}, false
	}
	if !e.liveAt(m.now()) {
		m.entries.Remove(key)
		return entry{}, false
	}
	return e, true
}

// put must be called with mu held.
func (m *MemoryProvider) put(key, value string, ttl time.Duration) {
	m.entries.Add(key, entry{value: value, deadline: m.now().Add(ttl)})
}
