package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// RedisLocker obtains leases through redislock so that several engine
// processes sharing one database also share one lock space.
type RedisLocker struct {
	client *redislock.Client
	ttl    time.Duration
	opts   *redislock.Options
}

func NewRedisLocker(rdb redis.UniversalClient, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisLocker{
		client: redislock.New(rdb),
		ttl:    ttl,
		opts: &redislock.Options{
			RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(50*time.Millisecond), 100),
		},
	}
}

func (r *RedisLocker) Obtain(ctx context.Context, key string) (Lease, error) {
	l, err := r.client.Obtain(ctx, key, r.ttl, r.opts)
	if err != nil {
		if errors.Is(err, redislock.ErrNotObtained) {
			return nil, ErrNotObtained
		}
		return nil, fmt.Errorf("obtain redis lock: %w", err)
	}
	return l, nil
}
