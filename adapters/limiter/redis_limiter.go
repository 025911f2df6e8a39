package limiter

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/layer-3/faucet/ports"
)

// Quotas maps a rate limit scope to the number of requests allowed per window.
// A scope with no quota is unlimited.
type Quotas map[string]int

// RedisLimiter implements fixed-window per-key rate limiting on Redis
// counters. Backend errors fail open: a broken cache should not take the
// service down with it.
type RedisLimiter struct {
	client *redis.Client
	window time.Duration
	quotas Quotas
}

// NewRedisLimiter creates a new Redis-backed rate limiter
func NewRedisLimiter(client *redis.Client, window time.Duration, quotas Quotas) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		window: window,
		quotas: quotas,
	}
}

// Allow reports whether the key may perform another request in the scope
func (l *RedisLimiter) Allow(ctx context.Context, scope, key string) (bool, error) {
	quota, ok := l.quotas[scope]
	if !ok || quota <= 0 {
		return true, nil
	}

	redisKey := "faucet:rl:" + scope + ":" + key
	cnt, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return true, nil // fail-open on cache errors
	}
	if cnt == 1 {
		l.client.Expire(ctx, redisKey, l.window)
	}

	return cnt <= int64(quota), nil
}

var _ ports.RateLimiter = (*RedisLimiter)(nil)
