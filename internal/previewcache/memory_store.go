package previewcache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps previews in process. It is used when no Redis URL is
// configured and by the CLI.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]memoryEntry
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// NewMemoryStore creates an in-process store with the given TTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]memoryEntry),
	}
}

// Put stores p under a fresh token.
func (s *MemoryStore) Put(_ context.Context, p PendingImport) (string, error) {
	now := s.now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now.UTC()
	}

	// Entries are stored encoded so callers never share slices with the cache.
	data, err := marshalPending(p)
	if err != nil {
		return "", err
	}

	token := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictExpired(now)
	s.entries[token] = memoryEntry{data: data, expiresAt: now.Add(s.ttl)}
	return token, nil
}

// Get returns the pending import for token.
func (s *MemoryStore) Get(_ context.Context, token string) (PendingImport, error) {
	s.mu.Lock()
	entry, ok := s.entries[token]
	if ok && !s.now().Before(entry.expiresAt) {
		delete(s.entries, token)
		ok = false
	}
	s.mu.Unlock()

	if !ok {
		return PendingImport{}, ErrNotFound
	}
	return unmarshalPending(entry.data)
}

// Delete drops token.
func (s *MemoryStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, token)
	return nil
}

// Len reports the number of unexpired previews.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictExpired(s.now())
	return len(s.entries)
}

func (s *MemoryStore) evictExpired(now time.Time) {
	for token, entry := range s.entries {
		if !now.Before(entry.expiresAt) {
			delete(s.entries, token)
		}
	}
}
