package stubserver

import (
	"sync"
	"time"
)

// idempotencyEntry records a processed booking submission
type idempotencyEntry struct {
	bookingID string
	expiresAt time.Time
}

// IdempotencyStore remembers which Idempotency-Key values have already
// produced a booking, so a retried submission returns the original outcome
// instead of double-booking. In-memory only, matching the stub's scope.
type IdempotencyStore struct {
	mu        sync.RWMutex
	entries   map[string]idempotencyEntry
	ttl       time.Duration
	stopChan  chan struct{}
	closeOnce sync.Once
}

// NewIdempotencyStore creates a store with a cleanup loop for expired keys
func NewIdempotencyStore(ttl time.Duration) *IdempotencyStore {
	store := &IdempotencyStore{
		entries:  make(map[string]idempotencyEntry),
		ttl:      ttl,
		stopChan: make(chan struct{}),
	}
	go store.cleanupLoop()
	return store
}

// Lookup returns the booking id recorded for the key, if any
func (s *IdempotencyStore) Lookup(key string) (string, bool) {
	if key == "" {
		return "", false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[key]
	if !ok || time.Now().After(e.expiresAt) {
		return "", false
	}
	return e.bookingID, true
}

// Record stores the booking produced for the key
func (s *IdempotencyStore) Record(key, bookingID string) {
	if key == "" {
		return
	}
	s.mu.Lock()
	s.entries[key] = idempotencyEntry{
		bookingID: bookingID,
		expiresAt: time.Now().Add(s.ttl),
	}
	s.mu.Unlock()
}

// Close stops the cleanup loop. Safe to call multiple times.
func (s *IdempotencyStore) Close() {
	s.closeOnce.Do(func() {
		close(s.stopChan)
	})
}

func (s *IdempotencyStore) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

func (s *IdempotencyStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for key, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, key)
		}
	}
}
