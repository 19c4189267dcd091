package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore backs Store with an in-process TTL cache. Entries are held
// as JSON so cached snapshots never alias the slices callers mutate.
type MemoryStore struct {
	c *gocache.Cache
}

func NewMemoryStore(defaultTTL, cleanupInterval time.Duration) *MemoryStore {
	return &MemoryStore{
		c: gocache.New(defaultTTL, cleanupInterval),
	}
}

func (s *MemoryStore) Get(_ context.Context, key string, dst interface{}) (bool, error) {
	raw, found := s.c.Get(key)
	if !found {
		return false, nil
	}
	payload, ok := raw.([]byte)
	if !ok {
		return false, fmt.Errorf("unexpected cache entry type for key %s", key)
	}
	if err := json.Unmarshal(payload, dst); err != nil {
		return false, fmt.Errorf("failed to decode cache entry: %w", err)
	}
	return true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}
	s.c.Set(key, payload, ttl)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.c.Delete(key)
	return nil
}
