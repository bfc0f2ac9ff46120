package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/viralforge/brandhub/internal/domain"
)

// RedisRateLimiter counts attempts in fixed windows. The window starts with
// the first hit and the counter expires with it.
type RedisRateLimiter struct {
	client *redis.Client
	prefix string
}

func NewRedisRateLimiter(client *redis.Client) *RedisRateLimiter {
	return &RedisRateLimiter{client: client, prefix: "brandhub:ratelimit:"}
}

func (l *RedisRateLimiter) Allow(ctx context.Context, scope, key string, limit int, window time.Duration) error {
	redisKey := l.prefix + scope + ":" + strings.ToLower(key)

	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return fmt.Errorf("incr rate limit counter: %w", err)
	}
	if count == 1 {
		if err := l.client.Expire(ctx, redisKey, window).Err(); err != nil {
			return fmt.Errorf("expire rate limit counter: %w", err)
		}
	}
	if count > int64(limit) {
		return domain.ErrRateLimited
	}
	return nil
}
