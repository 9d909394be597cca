package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned when a key is not present in the durable cache.
var ErrCacheMiss = errors.New("collector: cache miss")

// RedisCacheConfig configures the durable aggregate store.
type RedisCacheConfig struct {
	Host      string
	Port      int
	Password  string
	DB        int
	KeyPrefix string
	TTL       time.Duration
}

// RedisCache persists Hub.Aggregate() snapshots so a restarted process
// (or a separate reader) can see the last known aggregates for a
// source instead of starting from an empty cache.
type RedisCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisCache dials Redis per cfg and verifies connectivity with a
// bounded Ping before returning.
func NewRedisCache(cfg RedisCacheConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 5,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("collector: connect to redis: %w", err)
	}

	ttl := cfg.TTL
	if ttl == 0 {
		ttl = 5 * time.Minute
	}
	return &RedisCache{client: client, keyPrefix: cfg.KeyPrefix, ttl: ttl}, nil
}

// StoreAggregates persists a Hub.Aggregate() snapshot under name,
// keyed so a caller can later fetch the last published aggregates for
// that collector.
func (c *RedisCache) StoreAggregates(ctx context.Context, name string, aggregates map[string]Aggregate) error {
	data, err := json.Marshal(aggregates)
	if err != nil {
		return fmt.Errorf("collector: marshal aggregates: %w", err)
	}
	if err := c.client.Set(ctx, c.buildKey(name), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("collector: store aggregates: %w", err)
	}
	return nil
}

// LoadAggregates retrieves the last persisted aggregate snapshot for
// name, returning ErrCacheMiss if nothing has been stored (or it has
// expired).
func (c *RedisCache) LoadAggregates(ctx context.Context, name string) (map[string]Aggregate, error) {
	val, err := c.client.Get(ctx, c.buildKey(name)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("collector: load aggregates: %w", err)
	}

	var out map[string]Aggregate
	if err := json.Unmarshal([]byte(val), &out); err != nil {
		return nil, fmt.Errorf("collector: unmarshal aggregates: %w", err)
	}
	return out, nil
}

// Close releases the underlying Redis connection pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) buildKey(name string) string {
	if c.keyPrefix == "" {
		return "collector:" + name
	}
	return c.keyPrefix + ":collector:" + name
}
