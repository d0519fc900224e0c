package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const scanBatchSize = 100

// Redis implements Cache on a shared Redis instance.
type Redis struct {
	client *redis.Client
}

// NewRedis wraps an already-connected client. The caller owns the
// client lifecycle; the queue shares the same connection in production.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (c *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (c *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

func (c *Redis) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

func (c *Redis) DeleteByPrefix(ctx context.Context, prefix string, limit int) (int, error) {
	var (
		cursor  uint64
		deleted int
	)
	for {
		keys, next, err := c.client.Scan(ctx, cursor, prefix+"*", scanBatchSize).Result()
		if err != nil {
			return deleted, err
		}
		if limit > 0 && deleted+len(keys) > limit {
			keys = keys[:limit-deleted]
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return deleted, err
			}
			deleted += len(keys)
		}
		if limit > 0 && deleted >= limit {
			return deleted, nil
		}
		cursor = next
		if cursor == 0 {
			return deleted, nil
		}
	}
}
