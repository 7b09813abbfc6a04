package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// LocalCache 基于 go-cache 的进程内缓存
type LocalCache struct {
	store *gocache.Cache
}

// NewLocalCache 创建本地缓存
func NewLocalCache(cfg LocalConfig) *LocalCache {
	expiration := cfg.DefaultExpiration
	if expiration == 0 {
		expiration = 5 * time.Minute
	}
	cleanup := cfg.CleanupInterval
	if cleanup == 0 {
		cleanup = 10 * time.Minute
	}
	return &LocalCache{store: gocache.New(expiration, cleanup)}
}

func (c *LocalCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := c.store.Get(key)
	if !ok {
		return nil, false, nil
	}
	data, ok := v.([]byte)
	if !ok {
		return nil, false, nil
	}
	return data, true, nil
}

func (c *LocalCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = gocache.DefaultExpiration
	}
	c.store.Set(key, value, ttl)
	return nil
}

func (c *LocalCache) Delete(_ context.Context, key string) error {
	c.store.Delete(key)
	return nil
}

func (c *LocalCache) Close() error {
	c.store.Flush()
	return nil
}
