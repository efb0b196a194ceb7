package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis-backed Store for multi-instance deployments where each node
// keeping its own copy would defeat the point.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

func NewRedis(cfg RedisConfig) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	ttl := cfg.TTL

	if ttl <= 0 {
		ttl = 5 * time.Second
	}

	return &Redis{client: client, ttl: ttl}
}

// this ping function checks redis connectivity

func (c *Redis) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *Redis) Close() error {
	return c.client.Close()
}

// Get is best effort: a redis hiccup reads as a cache miss, never an error.
func (c *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := c.client.Get(ctx, key).Bytes()

	if err != nil {
		return nil, false
	}

	return val, true
}

func (c *Redis) Set(ctx context.Context, key string, val []byte) {
	_ = c.client.Set(ctx, key, val, c.ttl).Err()
}
