package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const loginRateKeyPrefix = "login:rate:"

// LoginRateLimiter counts login attempts per client address in Redis so the
// limit holds across service instances.
type LoginRateLimiter struct {
	client *redis.Client
}

func NewLoginRateLimiter(client *redis.Client) *LoginRateLimiter {
	return &LoginRateLimiter{client: client}
}

// Allow records one login attempt for addr and reports whether it is still
// within limit. Crossing the limit extends the counter's TTL to blockTime
// so a hammering client stays blocked.
func (l *LoginRateLimiter) Allow(
	ctx context.Context,
	addr string,
	limit int,
	interval, blockTime time.Duration,
) (bool, error) {
	key := loginRateKeyPrefix + addr

	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("incr login counter: %w", err)
	}
	if count == 1 {
		if err := l.client.Expire(ctx, key, interval).Err(); err != nil {
			return false, fmt.Errorf("set login counter ttl: %w", err)
		}
	}

	if count > int64(limit) {
		if err := l.client.Expire(ctx, key, blockTime).Err(); err != nil {
			return false, fmt.Errorf("set login block ttl: %w", err)
		}
		return false, nil
	}

	return true, nil
}
