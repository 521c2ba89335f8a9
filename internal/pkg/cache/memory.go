package cache

import (
	"context"
	"sync"
	"time"
)

// Ensure memoryCache implements the port at compile time.
var _ Cache = (*memoryCache)(nil)

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// memoryCache is an in-process Cache for tests and single-instance development
// runs without Redis. Expired entries are dropped lazily on access.
type memoryCache struct {
	mu          sync.Mutex
	entries     map[string]memoryEntry
	serviceName string
	now         func() time.Time
}

func NewMemoryCache(serviceName string) Cache {
	return &memoryCache{
		entries:     make(map[string]memoryEntry),
		serviceName: serviceName,
		now:         time.Now,
	}
}

func (m *memoryCache) Set(_ context.Context, key string, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = m.entry(value, ttl)
	return nil
}

func (m *memoryCache) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.live(key)
	if !ok {
		return "", nil
	}
	return e.value, nil
}

func (m *memoryCache) SetNX(_ context.Context, key string, value string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.live(key); ok {
		return false, nil
	}
	m.entries[key] = m.entry(value, ttl)
	return true, nil
}

func (m *memoryCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *memoryCache) CompareAndDelete(_ context.Context, key string, value string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.live(key)
	if !ok || e.value != value {
		return false, nil
	}
	delete(m.entries, key)
	return true, nil
}

func (m *memoryCache) GenerateKey(operation, key string) string {
	return generateKey(m.serviceName, operation, key)
}

func (m *memoryCache) entry(value string, ttl time.Duration) memoryEntry {
	e := memoryEntry{value: value}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}
	return e
}

func (m *memoryCache) live(key string) (memoryEntry, bool) {
	e, ok := m.entries[key]
	if !ok {
		return memoryEntry{}, false
	}
	if !e.expiresAt.IsZero() && !m.now().Before(e.expiresAt) {
		delete(m.entries, key)
		return memoryEntry{}, false
	}
	return e, true
}
