package bootstrap

import (
	"context"
	"crypto/tls"
	"math"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	appconfig "github.com/lamitex/lamitex-crm/internal/config"
	httpmiddleware "github.com/lamitex/lamitex-crm/internal/http/middleware"
	"github.com/lamitex/lamitex-crm/pkg/logging"
)

// RateLimitWindow is the fixed window of the shared Redis limiter.
const RateLimitWindow = time.Minute

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// BuildRateLimiter picks the limiter for the outbound routes: the shared Redis
// counter when a client is given, otherwise an in-process token bucket. The
// returned name labels rejections in metrics.
func BuildRateLimiter(cfg *appconfig.Config, redisClient *redis.Client, logger *logging.Logger) (httpmiddleware.Limiter, string) {
	if cfg == nil || cfg.RateLimitRPS <= 0 {
		return nil, ""
	}
	if logger == nil {
		logger = logging.Default()
	}
	if redisClient != nil {
		limit := int(math.Ceil(cfg.RateLimitRPS * RateLimitWindow.Seconds()))
		if limit < cfg.RateLimitBurst {
			limit = cfg.RateLimitBurst
		}
		logger.Info("rate limiting outbound routes", "backend", "redis", "limit", limit, "window", RateLimitWindow.String())
		return httpmiddleware.NewRedisRateLimiter(redisClient, limit, RateLimitWindow, logger), "redis"
	}
	logger.Info("rate limiting outbound routes", "backend", "memory", "rps", cfg.RateLimitRPS, "burst", cfg.RateLimitBurst)
	return httpmiddleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst), "memory"
}
