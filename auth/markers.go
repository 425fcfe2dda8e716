package auth

import (
	"context"
	"sync"
	"time"
)

// Marker keys persisted across restarts. These are the only durable
// artifacts the service owns; everything else lives in memory for the
// lifetime of the session.
const (
	MarkerToken        = "token"
	MarkerUserID       = "userId"
	MarkerLockoutUntil = "login_lockout_until"
)

// MarkerStore is a small key/value store for session markers. Get
// returns an empty string when the key is absent.
type MarkerStore interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

// MemoryMarkerStore is the in-process MarkerStore used in tests and
// when no redis URL is configured.
type MemoryMarkerStore struct {
	mu      sync.RWMutex
	values  map[string]string
	expires map[string]time.Time
	clock   Clock
}

func NewMemoryMarkerStore(clock Clock) *MemoryMarkerStore {
	if clock == nil {
		clock = NewRealClock()
	}
	return &MemoryMarkerStore{
		values:  make(map[string]string),
		expires: make(map[string]time.Time),
		clock:   clock,
	}
}

func (s *MemoryMarkerStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	if ttl > 0 {
		s.expires[key] = s.clock.Now().Add(ttl)
	} else {
		delete(s.expires, key)
	}
	return nil
}

func (s *MemoryMarkerStore) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	value, ok := s.values[key]
	expiry, hasExpiry := s.expires[key]
	s.mu.RUnlock()

	if !ok {
		return "", nil
	}
	if hasExpiry && !s.clock.Now().Before(expiry) {
		s.mu.Lock()
		delete(s.values, key)
		delete(s.expires, key)
		s.mu.Unlock()
		return "", nil
	}
	return value, nil
}

func (s *MemoryMarkerStore) Del(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.values, key)
		delete(s.expires, key)
	}
	return nil
}
