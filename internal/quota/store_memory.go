package quota

import (
	"context"
	"sync"
	"time"
)

type memoryWindow struct {
	count   int64
	resetAt time.Time
}

// MemoryStore implements Store with an in-process map. Used when Redis is
// not configured (development) and in tests. The mutex serializes the
// reset-and-increment per process; it offers no cross-process atomicity.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string]*memoryWindow
	now     func() time.Time
}

// NewMemoryStore creates an in-memory quota store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		windows: make(map[string]*memoryWindow),
		now:     time.Now,
	}
}

// ResetAndIncrement counts one action, starting a fresh window when the
// previous one has elapsed.
func (s *MemoryStore) ResetAndIncrement(_ context.Context, subjectID string, window time.Duration) (int64, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	rec, ok := s.windows[subjectID]
	if !ok || !now.Before(rec.resetAt) {
		rec = &memoryWindow{count: 0, resetAt: now.Add(window)}
		s.windows[subjectID] = rec
	}

	rec.count++
	return rec.count, rec.resetAt, nil
}

// Compile-time check that MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
