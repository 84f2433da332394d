package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisMatrixCache stores each matrix as a JSON value under Prefix+key.
// A zero TTL keeps entries until they are overwritten.
type RedisMatrixCache struct {
	rdb    *redis.Client
	Prefix string
	TTL    time.Duration
}

func NewRedisMatrixCache(rdb *redis.Client, ttl time.Duration) *RedisMatrixCache {
	return &RedisMatrixCache{rdb: rdb, Prefix: "vrp:matrix:", TTL: ttl}
}

// NewRedisMatrixCacheFromURL connects using a redis:// URL.
func NewRedisMatrixCacheFromURL(url string, ttl time.Duration) (*RedisMatrixCache, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis matrix cache: parse url: %w", err)
	}
	return NewRedisMatrixCache(redis.NewClient(opt), ttl), nil
}

func (c *RedisMatrixCache) Get(ctx context.Context, key string) ([][]int64, bool, error) {
	if strings.TrimSpace(key) == "" {
		return nil, false, errors.New("get matrix cache: key must not be empty")
	}

	data, err := c.rdb.Get(ctx, c.Prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get matrix cache key=%q: %w", key, err)
	}

	var m [][]int64
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, false, fmt.Errorf("get matrix cache key=%q: decode: %w", key, err)
	}
	return m, true, nil
}

func (c *RedisMatrixCache) Put(ctx context.Context, key string, matrix [][]int64) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("insert matrix cache: key must not be empty")
	}

	data, err := json.Marshal(matrix)
	if err != nil {
		return fmt.Errorf("insert matrix cache key=%q: encode: %w", key, err)
	}
	if err := c.rdb.Set(ctx, c.Prefix+key, data, c.TTL).Err(); err != nil {
		return fmt.Errorf("insert matrix cache key=%q: %w", key, err)
	}
	return nil
}

func (c *RedisMatrixCache) Close() error { return c.rdb.Close() }
