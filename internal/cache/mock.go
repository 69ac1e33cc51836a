package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryCounter is the PollCounter used when Redis is not configured. Counts
// live only as long as the process.
type MemoryCounter struct {
	mu     sync.Mutex
	counts map[string]memoryEntry
	now    func() time.Time
}

type memoryEntry struct {
	count   int64
	expires time.Time
}

func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{
		counts: make(map[string]memoryEntry),
		now:    time.Now,
	}
}

func (m *MemoryCounter) Close() error {
	return nil
}

func (m *MemoryCounter) Incr(ctx context.Context, id string, ttl time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	entry, ok := m.counts[id]
	if !ok || now.After(entry.expires) {
		entry = memoryEntry{}
	}
	entry.count++
	entry.expires = now.Add(ttl)
	m.counts[id] = entry
	return entry.count, nil
}

func (m *MemoryCounter) Reset(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.counts, id)
	return nil
}
