package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/lamitex/lamitex-crm/pkg/logging"
)

// RedisRateLimiter is a fixed-window counter shared by every API instance.
// Redis failures let the request through.
type RedisRateLimiter struct {
	redis  *redis.Client
	tracer trace.Tracer
	logger *logging.Logger
	limit  int
	window time.Duration
	prefix string
}

// NewRedisRateLimiter allows limit requests per key in each window.
func NewRedisRateLimiter(client *redis.Client, limit int, window time.Duration, logger *logging.Logger) *RedisRateLimiter {
	if logger == nil {
		logger = logging.Default()
	}
	if limit <= 0 {
		limit = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RedisRateLimiter{
		redis:  client,
		tracer: otel.Tracer("lamitex.internal.http.middleware"),
		logger: logger,
		limit:  limit,
		window: window,
		prefix: "ratelimit",
	}
}

// Allow increments the key's counter for the current window.
func (l *RedisRateLimiter) Allow(ctx context.Context, key string) bool {
	ctx, span := l.tracer.Start(ctx, "ratelimit.check")
	defer span.End()
	span.SetAttributes(attribute.String("lamitex.ratelimit.key", key))

	redisKey := fmt.Sprintf("%s:%s", l.prefix, key)
	count, err := l.incrementAndGet(ctx, redisKey)
	if err != nil {
		// Fail open - allow the request if Redis is down
		l.logger.Error("rate limit check failed", "error", err, "key", redisKey)
		span.RecordError(err)
		return true
	}

	allowed := count <= l.limit
	if !allowed {
		l.logger.Warn("rate limit exceeded", "key", key, "count", count, "max", l.limit)
		span.SetAttributes(attribute.Bool("lamitex.ratelimit.exceeded", true))
	}
	return allowed
}

// incrementAndGet increments the window counter, setting its expiry on the
// first hit.
func (l *RedisRateLimiter) incrementAndGet(ctx context.Context, key string) (int, error) {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		if err := l.redis.Expire(ctx, key, l.window).Err(); err != nil {
			return 0, err
		}
	}
	return int(count), nil
}

// Reset clears the counter for key.
func (l *RedisRateLimiter) Reset(ctx context.Context, key string) error {
	return l.redis.Del(ctx, fmt.Sprintf("%s:%s", l.prefix, key)).Err()
}
