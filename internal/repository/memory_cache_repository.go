package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	appErrors "github.com/noah-isme/clinic-scheduler-api/pkg/errors"
)

// MemoryCacheRepository is a bounded in-process LRU whose entries expire after a fixed TTL.
// Values are stored as JSON so callers observe the same semantics as the Redis backend.
type MemoryCacheRepository struct {
	lru *expirable.LRU[string, []byte]
}

// NewMemoryCacheRepository builds an LRU holding at most capacity entries for ttl each.
// A non-positive ttl keeps entries until they are evicted.
func NewMemoryCacheRepository(capacity int, ttl time.Duration) *MemoryCacheRepository {
	if capacity <= 0 {
		capacity = 512
	}
	if ttl < 0 {
		ttl = 0
	}
	return &MemoryCacheRepository{lru: expirable.NewLRU[string, []byte](capacity, nil, ttl)}
}

// Get decodes a live entry into dest and marks it most recently used.
func (r *MemoryCacheRepository) Get(ctx context.Context, key string, dest interface{}) error {
	payload, ok := r.lru.Get(key)
	if !ok {
		return appErrors.ErrCacheMiss
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		return fmt.Errorf("unmarshal cache value for %s: %w", key, err)
	}
	return nil
}

// Set stores value, evicting the least recently used entry when full. Expiry is fixed at
// construction, so ttl is ignored.
func (r *MemoryCacheRepository) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value for %s: %w", key, err)
	}
	r.lru.Add(key, payload)
	return nil
}

// DeleteByPattern removes entries whose key matches a glob pattern.
func (r *MemoryCacheRepository) DeleteByPattern(ctx context.Context, pattern string) error {
	if _, err := path.Match(pattern, ""); err != nil {
		return fmt.Errorf("invalid cache pattern %s: %w", pattern, err)
	}
	for _, key := range r.lru.Keys() {
		if matched, _ := path.Match(pattern, key); matched {
			r.lru.Remove(key)
		}
	}
	return nil
}

// Len reports the number of stored entries.
func (r *MemoryCacheRepository) Len() int {
	return r.lru.Len()
}
