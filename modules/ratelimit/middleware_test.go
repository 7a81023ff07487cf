package ratelimit

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// countingLimiter allows the first limit calls per key.
type countingLimiter struct {
	limit int
	seen  map[string]int
	err   error
}

func (l *countingLimiter) Allow(_ context.Context, key string) (*Result, error) {
	if l.err != nil {
		return nil, l.err
	}
	l.seen[key]++
	n := l.seen[key]
	if n > l.limit {
		return &Result{Allowed: false, ResetAt: time.Now().Add(time.Minute), RetryAfter: 30 * time.Second}, nil
	}
	return &Result{Allowed: true, Remaining: l.limit - n, ResetAt: time.Now().Add(time.Minute)}, nil
}

func (l *countingLimiter) Limit() int { return l.limit }

func newLimitedApp(l Limiter) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true, ProxyHeader: fiber.HeaderXForwardedFor})
	app.Post("/auth/login", IPRateLimit(l, zap.NewNop()), func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})
	return app
}

func TestIPRateLimit_Exceeded(t *testing.T) {
	app := newLimitedApp(&countingLimiter{limit: 2, seen: map[string]int{}})

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest("POST", "/auth/login", nil)
		req.Header.Set("X-Forwarded-For", "192.168.1.100")
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, "2", resp.Header.Get("X-RateLimit-Limit"))
	}

	req := httptest.NewRequest("POST", "/auth/login", nil)
	req.Header.Set("X-Forwarded-For", "192.168.1.100")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "30", resp.Header.Get("Retry-After"))

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "too_many_requests", body["error"])
	assert.Equal(t, float64(30), body["retryAfter"])

	other := httptest.NewRequest("POST", "/auth/login", nil)
	other.Header.Set("X-Forwarded-For", "10.0.0.1")
	resp, err = app.Test(other, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestIPRateLimit_FailsOpen(t *testing.T) {
	app := newLimitedApp(&countingLimiter{limit: 1, err: errors.New("connection refused")})

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("POST", "/auth/login", nil)
		req.Header.Set("X-Forwarded-For", "192.168.1.100")
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Empty(t, resp.Header.Get("X-RateLimit-Limit"))
	}
}

func TestSlidingWindowLimiter_Redis(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	defer client.Close()
	if err := client.Ping(t.Context()).Err(); err != nil {
		t.Skip("Redis not available, skipping integration test")
	}

	prefix := "test:smart-tasks:ratelimit:"
	defer client.Del(context.Background(), prefix+"key", prefix+"key:counter")

	limiter := NewSlidingWindowLimiter(client, Config{RequestsPerWindow: 3, WindowSize: time.Minute, KeyPrefix: prefix})
	for i := 0; i < 3; i++ {
		res, err := limiter.Allow(t.Context(), "key")
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Equal(t, 3-i-1, res.Remaining)
	}

	res, err := limiter.Allow(t.Context(), "key")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Positive(t, res.RetryAfter)
}
