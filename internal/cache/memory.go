package cache

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// MemoryStore is an in-process Store, used when Redis is unavailable
type MemoryStore struct {
	incr  sync.Mutex
	items *ttlcache.Cache[string, []byte]
}

// NewMemoryStore creates an empty in-process store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: ttlcache.New[string, []byte](
			ttlcache.WithDisableTouchOnHit[string, []byte](),
		),
	}
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	item := m.items.Get(key)
	if item == nil {
		return nil, ErrMiss
	}
	return append([]byte(nil), item.Value()...), nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = ttlcache.NoTTL
	}
	m.items.Set(key, append([]byte(nil), value...), ttl)
	return nil
}

func (m *MemoryStore) Incr(_ context.Context, key string) (int64, error) {
	m.incr.Lock()
	defer m.incr.Unlock()

	var n int64
	if item := m.items.Get(key); item != nil {
		v, err := strconv.ParseInt(string(item.Value()), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("value at %s is not a counter: %w", key, err)
		}
		n = v
	}
	n++
	m.items.Set(key, []byte(strconv.FormatInt(n, 10)), ttlcache.NoTTL)
	return n, nil
}

func (m *MemoryStore) DeletePrefix(_ context.Context, prefix string) error {
	m.items.DeleteExpired()
	for _, k := range m.items.Keys() {
		if strings.HasPrefix(k, prefix) {
			m.items.Delete(k)
		}
	}
	return nil
}
