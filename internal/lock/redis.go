package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "lock:"

// RedisLocker implements Locker on a shared Redis instance with
// SET NX EX leases. Lock entries carry only the holder token.
type RedisLocker struct {
	client *redis.Client
}

func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{client: client}
}

func (l *RedisLocker) TryAcquire(ctx context.Context, key string, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, keyPrefix+key, token, ttl).Result()
	if err != nil {
		return "", fmt.Errorf("acquire %s: %w", key, err)
	}
	if !ok {
		return "", ErrLockUnavailable
	}
	return token, nil
}

func (l *RedisLocker) Release(ctx context.Context, key string, token string) (bool, error) {
	full := keyPrefix + key
	val, err := l.client.Get(ctx, full).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("release %s: %w", key, err)
	}
	if val != token {
		return false, nil
	}
	if err := l.client.Del(ctx, full).Err(); err != nil {
		return false, fmt.Errorf("release %s: %w", key, err)
	}
	return true, nil
}

// NewRedisClient connects to Redis with a few ping retries, so a worker
// booting alongside the store does not flap.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	const (
		maxRetries = 5
		retryDelay = 2 * time.Second
	)

	var lastErr error
	for i := 0; i < maxRetries; i++ {
		client := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		})
		if err := client.Ping(ctx).Err(); err == nil {
			return client, nil
		} else {
			lastErr = err
			_ = client.Close()
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryDelay):
		}
	}
	return nil, fmt.Errorf("connect redis %s: %w", addr, lastErr)
}
