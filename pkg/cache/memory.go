package cache

import (
	"container/list"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

type memoryItem struct {
	key      string
	value    []byte
	expireAt time.Time
}

// MemoryCache is a size-bounded LRU cache. Expired items are dropped on read.
type MemoryCache struct {
	mu         sync.Mutex
	items      map[string]*list.Element
	order      *list.List // front is most recently used
	maxSize    int
	defaultTTL time.Duration
	now        func() time.Time
}

var _ Cache = (*MemoryCache)(nil)

// NewMemoryCache creates an in-memory cache.
func NewMemoryCache(opts ...MemoryOption) *MemoryCache {
	cfg := &MemoryConfig{
		MaxSize:    1000,
		DefaultTTL: 10 * time.Minute,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return &MemoryCache{
		items:      make(map[string]*list.Element),
		order:      list.New(),
		maxSize:    cfg.MaxSize,
		defaultTTL: cfg.DefaultTTL,
		now:        cfg.now,
	}
}

func (mc *MemoryCache) Set(_ context.Context, key string, value any, expiration time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	if expiration <= 0 {
		expiration = mc.defaultTTL
	}

	mc.mu.Lock()
	defer mc.mu.Unlock()

	item := &memoryItem{key: key, value: b, expireAt: mc.now().Add(expiration)}
	if el, ok := mc.items[key]; ok {
		el.Value = item
		mc.order.MoveToFront(el)
		return nil
	}
	mc.items[key] = mc.order.PushFront(item)
	for mc.order.Len() > mc.maxSize {
		mc.removeElement(mc.order.Back())
	}
	return nil
}

func (mc *MemoryCache) Get(_ context.Context, key string, dest any) error {
	mc.mu.Lock()
	el, ok := mc.items[key]
	if !ok {
		mc.mu.Unlock()
		return ErrCacheMiss
	}
	item := el.Value.(*memoryItem)
	if !mc.now().Before(item.expireAt) {
		mc.removeElement(el)
		mc.mu.Unlock()
		return ErrCacheMiss
	}
	mc.order.MoveToFront(el)
	b := item.value
	mc.mu.Unlock()

	if err := json.Unmarshal(b, dest); err != nil {
		return fmt.Errorf("cache decode %s: %w", key, err)
	}
	return nil
}

func (mc *MemoryCache) Delete(_ context.Context, keys ...string) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	for _, k := range keys {
		if el, ok := mc.items[k]; ok {
			mc.removeElement(el)
		}
	}
	return nil
}

// Len returns the number of stored items, expired ones included.
func (mc *MemoryCache) Len() int {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return mc.order.Len()
}

func (mc *MemoryCache) removeElement(el *list.Element) {
	mc.order.Remove(el)
	delete(mc.items, el.Value.(*memoryItem).key)
}
