// Package cache holds short-lived copies of catalog responses.
package cache

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
}

// Memory is an in-process TTL cache. Entries expire ttl after they were set; reads do not
// extend them.
type Memory struct {
	items *ttlcache.Cache[string, []byte]
}

func NewMemory() *Memory {
	return &Memory{items: ttlcache.New[string, []byte](
		ttlcache.WithDisableTouchOnHit[string, []byte](),
		ttlcache.WithCapacity[string, []byte](4096),
	)}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool) {
	it := m.items.Get(key)
	if it == nil || it.IsExpired() {
		return nil, false
	}
	return it.Value(), true
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	m.items.Set(key, value, ttl)
}
