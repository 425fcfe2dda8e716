package auth

import (
	"context"
	"time"
)

// PrefixedMarkerStore namespaces every key under a fixed prefix so
// multiple sessions can share one backing store.
type PrefixedMarkerStore struct {
	prefix string
	inner  MarkerStore
}

func NewPrefixedMarkerStore(prefix string, inner MarkerStore) *PrefixedMarkerStore {
	return &PrefixedMarkerStore{prefix: prefix + ":", inner: inner}
}

func (s *PrefixedMarkerStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.inner.Set(ctx, s.prefix+key, value, ttl)
}

func (s *PrefixedMarkerStore) Get(ctx context.Context, key string) (string, error) {
	return s.inner.Get(ctx, s.prefix+key)
}

func (s *PrefixedMarkerStore) Del(ctx context.Context, keys ...string) error {
	prefixed := make([]string, len(keys))
	for i, key := range keys {
		prefixed[i] = s.prefix + key
	}
	return s.inner.Del(ctx, prefixed...)
}
