package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoginLimiter throttles authentication attempts per caller. Keys are
// normalized emails so a brute-force run against one license slows down
// without affecting other practices.
type LoginLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Reset(ctx context.Context, key string) error
}

// RedisLoginLimiter is a sliding-window limiter backed by a Redis sorted set
// per key. It fails open: a Redis outage must never lock practitioners out.
type RedisLoginLimiter struct {
	client   *redis.Client
	window   time.Duration
	attempts int
}

func NewRedisLoginLimiter(client *redis.Client, window time.Duration, attempts int) *RedisLoginLimiter {
	return &RedisLoginLimiter{
		client:   client,
		window:   window,
		attempts: attempts,
	}
}

func (l *RedisLoginLimiter) Allow(ctx context.Context, key string) (bool, error) {
	now := time.Now()
	redisKey := l.redisKey(key)
	windowStart := now.Add(-l.window).UnixNano()
	nowNano := now.UnixNano()

	pipe := l.client.Pipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "0", fmt.Sprintf("%d", windowStart))
	zcard := pipe.ZCard(ctx, redisKey)
	pipe.ZAdd(ctx, redisKey, redis.Z{Score: float64(nowNano), Member: nowNano})
	pipe.Expire(ctx, redisKey, l.window+time.Minute)

	if _, err := pipe.Exec(ctx); err != nil {
		return true, fmt.Errorf("failed to execute pipeline: %w", err)
	}

	return zcard.Val() < int64(l.attempts), nil
}

func (l *RedisLoginLimiter) Reset(ctx context.Context, key string) error {
	if err := l.client.Del(ctx, l.redisKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to reset limiter key: %w", err)
	}
	return nil
}

func (l *RedisLoginLimiter) redisKey(key string) string {
	return fmt.Sprintf("login_attempts:%s", key)
}

// NoopLoginLimiter is used when Redis is not configured.
type NoopLoginLimiter struct{}

func NewNoopLoginLimiter() *NoopLoginLimiter { return &NoopLoginLimiter{} }

func (*NoopLoginLimiter) Allow(context.Context, string) (bool, error) { return true, nil }

func (*NoopLoginLimiter) Reset(context.Context, string) error { return nil }
