package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// PollCounter counts status polls per content record so polling always terminates
type PollCounter interface {
	Incr(ctx context.Context, id string, ttl time.Duration) (int64, error)
	Reset(ctx context.Context, id string) error
	Close() error
}

type RedisClient struct {
	client *redis.Client
	prefix string
}

func NewRedisClient(redisURL, prefix string) (*RedisClient, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	// Test the connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return newRedisClient(client, prefix), nil
}

func newRedisClient(client *redis.Client, prefix string) *RedisClient {
	return &RedisClient{
		client: client,
		prefix: prefix + "poll:",
	}
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}

// Incr bumps the attempt counter and returns the new value. The key expires
// after ttl so abandoned jobs do not leak keys.
func (r *RedisClient) Incr(ctx context.Context, id string, ttl time.Duration) (int64, error) {
	key := r.prefix + id
	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("redis incr error: %w", err)
	}
	return incr.Val(), nil
}

func (r *RedisClient) Reset(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, r.prefix+id).Err(); err != nil {
		return fmt.Errorf("redis del error: %w", err)
	}
	return nil
}
