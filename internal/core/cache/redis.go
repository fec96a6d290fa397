package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"community-events/internal/core/config"
)

// Cache 读穿缓存；redis 未配置时只做 singleflight 合并，nil *Cache 直接回源
type Cache struct {
	RDB *redis.Client
	TTL time.Duration
	sf  singleflight.Group
}

func New(c config.Redis) *Cache {
	ttl := time.Duration(c.TTLSec) * time.Second
	if c.Addr == "" {
		return &Cache{TTL: ttl}
	}
	return &Cache{
		RDB: redis.NewClient(&redis.Options{Addr: c.Addr, Password: c.Password, DB: c.DB}),
		TTL: ttl,
	}
}

func (c *Cache) Ping(ctx context.Context) error {
	if c == nil || c.RDB == nil {
		return nil
	}
	return c.RDB.Ping(ctx).Err()
}

func (c *Cache) GetOrLoad(ctx context.Context, key string, load func(context.Context) ([]byte, error)) ([]byte, error) {
	if c == nil {
		return load(ctx)
	}
	if c.RDB != nil {
		if b, err := c.RDB.Get(ctx, key).Bytes(); err == nil {
			return b, nil
		}
	}
	// single flight 合并回源；回源不跟随首个调用方取消，其余等待者共享结果
	v, err, _ := c.sf.Do(key, func() (any, error) {
		fctx := context.WithoutCancel(ctx)
		b, e := load(fctx)
		if e != nil {
			return nil, e
		}
		if c.RDB != nil && c.TTL > 0 {
			_ = c.RDB.Set(fctx, key, b, c.TTL).Err()
		}
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// Del 失效；redis 不可用时静默
func (c *Cache) Del(ctx context.Context, keys ...string) {
	if c == nil || c.RDB == nil || len(keys) == 0 {
		return
	}
	_ = c.RDB.Del(ctx, keys...).Err()
}

func (c *Cache) Close() error {
	if c == nil || c.RDB == nil {
		return nil
	}
	return c.RDB.Close()
}
