package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lamitex/lamitex-crm/pkg/logging"
)

func newRedisLimiter(t *testing.T, limit int) (*RedisRateLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisRateLimiter(client, limit, time.Minute, logging.New("error")), mr
}

func TestRedisRateLimiter_FixedWindow(t *testing.T) {
	limiter, mr := newRedisLimiter(t, 2)
	ctx := context.Background()

	assert.True(t, limiter.Allow(ctx, "ws:a"))
	assert.True(t, limiter.Allow(ctx, "ws:a"))
	assert.False(t, limiter.Allow(ctx, "ws:a"))
	assert.True(t, limiter.Allow(ctx, "ws:b"))

	assert.Equal(t, time.Minute, mr.TTL("ratelimit:ws:a"))

	mr.FastForward(time.Minute + time.Second)
	assert.True(t, limiter.Allow(ctx, "ws:a"))
}

func TestRedisRateLimiter_Reset(t *testing.T) {
	limiter, _ := newRedisLimiter(t, 1)
	ctx := context.Background()

	require.True(t, limiter.Allow(ctx, "ws:a"))
	require.False(t, limiter.Allow(ctx, "ws:a"))
	require.NoError(t, limiter.Reset(ctx, "ws:a"))
	assert.True(t, limiter.Allow(ctx, "ws:a"))
}

func TestRedisRateLimiter_FailsOpen(t *testing.T) {
	limiter, mr := newRedisLimiter(t, 1)
	mr.Close()

	for i := 0; i < 3; i++ {
		assert.True(t, limiter.Allow(context.Background(), "ws:a"))
	}
}

func TestRedisRateLimiter_Middleware(t *testing.T) {
	limiter, _ := newRedisLimiter(t, 1)
	handler := Limit(limiter, WorkspaceKey, "redis", nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/prospecting/search", nil)
	req.Header.Set(WorkspaceHeader, "tab-9")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}
