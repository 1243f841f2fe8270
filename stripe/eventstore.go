package stripe

import (
	"sync"
	"time"
)

// MemoryEventStore remembers processed webhook event IDs for a bounded time
// so redelivered events can be acknowledged without re-invoking handlers.
// It is process-local; a restart forgets everything, which is fine because
// handlers must tolerate duplicate delivery anyway.
type MemoryEventStore struct {
	mu     sync.RWMutex
	events map[string]time.Time
	ttl    time.Duration
}

// NewMemoryEventStore creates an event store that forgets entries after ttl.
func NewMemoryEventStore(ttl time.Duration) *MemoryEventStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	store := &MemoryEventStore{
		events: make(map[string]time.Time),
		ttl:    ttl,
	}
	go store.sweep()
	return store
}

// EventExists reports whether the event ID was processed within the TTL.
func (m *MemoryEventStore) EventExists(eventID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	processedAt, ok := m.events[eventID]
	return ok && time.Since(processedAt) <= m.ttl
}

// MarkProcessed records the event ID as processed.
func (m *MemoryEventStore) MarkProcessed(eventID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[eventID] = time.Now()
}

// Size returns the number of stored entries, expired ones included.
func (m *MemoryEventStore) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.events)
}

// sweep drops expired entries periodically so the map stays bounded.
func (m *MemoryEventStore) sweep() {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		m.mu.Lock()
		for eventID, processedAt := range m.events {
			if now.Sub(processedAt) > m.ttl {
				delete(m.events, eventID)
			}
		}
		m.mu.Unlock()
	}
}
