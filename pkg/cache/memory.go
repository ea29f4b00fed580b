package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sync"
	"time"
)

// memoryItem stores a cached value with its expiration.
type memoryItem struct {
	value    interface{}
	expireAt time.Time
}

func (m *memoryItem) expired() bool {
	return time.Now().After(m.expireAt)
}

// MemoryCache implements Service with an in-process map. Expiry is lazy: an
// expired entry is only removed when a Get observes it, and the map is
// otherwise unbounded for the lifetime of the process.
type MemoryCache struct {
	mu   sync.RWMutex
	data map[string]*memoryItem
}

// NewMemoryCache creates an in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		data: make(map[string]*memoryItem),
	}
}

func (mc *MemoryCache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour // default 7 days
	}

	mc.mu.Lock()
	mc.data[key] = &memoryItem{
		value:    value,
		expireAt: time.Now().Add(ttl),
	}
	mc.mu.Unlock()
	return nil
}

func (mc *MemoryCache) Get(_ context.Context, key string, dest interface{}) error {
	mc.mu.RLock()
	item, exists := mc.data[key]
	mc.mu.RUnlock()

	if !exists {
		return ErrCacheMiss
	}
	if item.expired() {
		mc.mu.Lock()
		delete(mc.data, key)
		mc.mu.Unlock()
		return ErrCacheMiss
	}

	return assign(item.value, dest)
}

func (mc *MemoryCache) Delete(_ context.Context, keys ...string) error {
	mc.mu.Lock()
	for _, key := range keys {
		delete(mc.data, key)
	}
	mc.mu.Unlock()
	return nil
}

// Close is a no-op for the memory backend.
func (mc *MemoryCache) Close() error { return nil }

// assign copies value into the pointer dest. Directly assignable values avoid
// serialization; anything else goes through a JSON round trip so the memory
// and Redis backends behave the same for struct values.
func assign(value, dest interface{}) error {
	dv := reflect.ValueOf(dest)
	if dv.Kind() != reflect.Ptr || dv.IsNil() {
		return fmt.Errorf("cache: dest must be a non-nil pointer")
	}

	sv := reflect.ValueOf(value)
	if sv.IsValid() && sv.Type().AssignableTo(dv.Elem().Type()) {
		dv.Elem().Set(sv)
		return nil
	}

	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: marshal stored value: %w", err)
	}
	if err := json.Unmarshal(b, dest); err != nil {
		return fmt.Errorf("cache: unmarshal into dest: %w", err)
	}
	return nil
}
