package cache

import (
	"sync"
	"time"
)

const sweepInterval = time.Minute

type entry struct {
	val     []byte
	expires time.Time
}

// memoryStore holds values with expiry in process memory while Redis cannot be reached.
type memoryStore struct {
	mu        sync.Mutex
	items     map[string]entry
	lastSweep time.Time
	now       func() time.Time
}

func newMemoryStore() *memoryStore {
	return &memoryStore{items: make(map[string]entry), now: time.Now}
}

func (m *memoryStore) get(key string) []byte {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.items[key]
	if !ok {
		return nil
	}
	if !e.expires.IsZero() && !m.now().Before(e.expires) {
		delete(m.items, key)
		return nil
	}
	return e.val
}

func (m *memoryStore) set(key string, val []byte, exp time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if now.Sub(m.lastSweep) >= sweepInterval {
		for k, e := range m.items {
			if !e.expires.IsZero() && !now.Before(e.expires) {
				delete(m.items, k)
			}
		}
		m.lastSweep = now
	}

	e := entry{val: append([]byte(nil), val...)}
	if exp > 0 {
		e.expires = now.Add(exp)
	}
	m.items[key] = e
}

func (m *memoryStore) delete(key string) {
	m.mu.Lock()
	delete(m.items, key)
	m.mu.Unlock()
}

func (m *memoryStore) reset() {
	m.mu.Lock()
	m.items = make(map[string]entry)
	m.mu.Unlock()
}
