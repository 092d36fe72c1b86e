package storage

import (
	"context"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// MemoryIdleTTL is how long an untouched visitor key lives in a Memory store.
const MemoryIdleTTL = 7 * 24 * time.Hour

// Memory is a process-local Store, used by tests and STORE_DRIVER=memory. Keys expire after
// MemoryIdleTTL without a read or write.
type Memory struct {
	claims sync.Mutex
	items  *ttlcache.Cache[string, []byte]
}

func NewMemory() *Memory {
	m := &Memory{items: ttlcache.New[string, []byte](
		ttlcache.WithTTL[string, []byte](MemoryIdleTTL),
	)}
	go m.items.Start()
	return m
}

func itemKey(visitor, key string) string {
	return visitor + "\x00" + key
}

func (m *Memory) Get(_ context.Context, visitor, key string) ([]byte, error) {
	it := m.items.Get(itemKey(visitor, key))
	if it == nil {
		return nil, ErrNotFound
	}
	v := it.Value()
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (m *Memory) Put(_ context.Context, visitor, key string, value []byte) error {
	v := make([]byte, len(value))
	copy(v, value)
	m.items.Set(itemKey(visitor, key), v, ttlcache.DefaultTTL)
	return nil
}

func (m *Memory) Delete(_ context.Context, visitor string, keys ...string) error {
	for _, k := range keys {
		m.items.Delete(itemKey(visitor, k))
	}
	return nil
}

func (m *Memory) Claim(_ context.Context, visitor, key string, ttl time.Duration) (bool, error) {
	m.claims.Lock()
	defer m.claims.Unlock()
	k := itemKey(visitor, key)
	if it := m.items.Get(k, ttlcache.WithDisableTouchOnHit[string, []byte]()); it != nil && !it.IsExpired() {
		return false, nil
	}
	m.items.Set(k, []byte(time.Now().UTC().Format(time.RFC3339Nano)), ttl)
	return true, nil
}

func (m *Memory) Close() error {
	m.items.Stop()
	return nil
}
