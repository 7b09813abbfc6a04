package cache

import (
	"context"
	"errors"
	"time"
)

// Config 缓存配置
type Config struct {
	Type  string // "local" 或 "redis"
	Redis RedisConfig
	Local LocalConfig
}

// RedisConfig Redis 缓存配置
type RedisConfig struct {
	Addr         string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// LocalConfig 本地缓存配置
type LocalConfig struct {
	DefaultExpiration time.Duration
	CleanupInterval   time.Duration
}

// ErrUnknownBackend 未知的缓存后端类型
var ErrUnknownBackend = errors.New("cache: unknown backend type")

// Cache 统一缓存接口
type Cache interface {
	// Get 获取缓存值，第二个返回值表示是否命中
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set 设置缓存值，ttl 为 0 时使用默认过期时间
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete 删除缓存值
	Delete(ctx context.Context, key string) error

	// Close 关闭缓存
	Close() error
}

// NewCache 根据配置创建缓存实例
func NewCache(cfg Config) (Cache, error) {
	switch cfg.Type {
	case "", "local":
		return NewLocalCache(cfg.Local), nil
	case "redis":
		return NewRedisCache(cfg.Redis)
	default:
		return nil, ErrUnknownBackend
	}
}
