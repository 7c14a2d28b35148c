package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps entries in process memory. Safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	o := buildOptions(opts)
	return &MemoryStore{
		entries: make(map[string]Entry),
		now:     o.now,
	}
}

// Get returns a copy of the payload for key if it has not expired.
// Expired entries are dropped on access.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}
	if e.Expired(s.now()) {
		s.mu.Lock()
		// Another writer may have refreshed it meanwhile.
		if cur, still := s.entries[key]; still && cur.Expired(s.now()) {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return nil, false, nil
	}

	return clone(e.Payload), true, nil
}

// Set stores a copy of payload under key for ttl.
func (s *MemoryStore) Set(_ context.Context, key string, payload []byte, ttl time.Duration) error {
	if err := validateSet(key, ttl); err != nil {
		return err
	}

	s.mu.Lock()
	s.entries[key] = Entry{
		Key:       key,
		Payload:   clone(payload),
		ExpiresAt: s.now().Add(ttl),
	}
	s.mu.Unlock()
	return nil
}

// Purge removes every entry.
func (s *MemoryStore) Purge(_ context.Context) error {
	s.mu.Lock()
	s.entries = make(map[string]Entry)
	s.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
