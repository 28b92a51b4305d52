package memory

import (
	"sync"
	"time"
)

// DefaultTTL is used when Write is called with a non-positive TTL.
const DefaultTTL = time.Hour

// WorkingMemory is an in-process key-value store with per-key expiry.
// Agents use it to pass intermediate results between pipeline stages.
type WorkingMemory struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

type entry struct {
	value   any
	expires time.Time
}

// NewWorkingMemory creates an empty working memory.
func NewWorkingMemory() *WorkingMemory {
	return &WorkingMemory{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Write stores value under key for the given TTL.
func (m *WorkingMemory) Write(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = entry{value: value, expires: m.now().Add(ttl)}
}

// Read returns the value for key, or nil if absent or expired.
// Expired entries are removed on read.
func (m *WorkingMemory) Read(key string) any {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil
	}
	if m.now().After(e.expires) {
		delete(m.entries, key)
		return nil
	}
	return e.value
}

// Clear removes key if present.
func (m *WorkingMemory) Clear(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
}

// Len returns the number of stored entries, including any not yet
// swept expired ones.
func (m *WorkingMemory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
