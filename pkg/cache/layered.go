package cache

import (
	"context"
	"time"
)

// LayeredCache reads through a memory layer in front of a shared cache.
// Writes go to the shared layer first. Memory entries never outlive the
// memory layer's default TTL.
type LayeredCache struct {
	memCache *MemoryCache
	shared   Cache
}

var _ Cache = (*LayeredCache)(nil)

func NewLayeredCache(mem *MemoryCache, shared Cache) *LayeredCache {
	return &LayeredCache{memCache: mem, shared: shared}
}

func (lc *LayeredCache) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	if err := lc.shared.Set(ctx, key, value, expiration); err != nil {
		return err
	}
	if expiration <= 0 || expiration > lc.memCache.defaultTTL {
		expiration = 0
	}
	return lc.memCache.Set(ctx, key, value, expiration)
}

func (lc *LayeredCache) Get(ctx context.Context, key string, dest any) error {
	if err := lc.memCache.Get(ctx, key, dest); err == nil {
		return nil
	}
	if err := lc.shared.Get(ctx, key, dest); err != nil {
		return err
	}
	_ = lc.memCache.Set(ctx, key, dest, 0)
	return nil
}

func (lc *LayeredCache) Delete(ctx context.Context, keys ...string) error {
	_ = lc.memCache.Delete(ctx, keys...)
	return lc.shared.Delete(ctx, keys...)
}
