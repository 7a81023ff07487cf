package ratelimit

import (
	"context"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Module owns the Redis connection behind the auth rate limiter.
type Module struct {
	client  *redis.Client
	limiter *SlidingWindowLimiter
	addr    string
	logger  *zap.Logger
}

var _ mono.Module = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates a rate limiting module against the Redis at opts.Addr.
func NewModule(opts *redis.Options, config Config, logger *zap.Logger) *Module {
	client := redis.NewClient(opts)
	return &Module{
		client:  client,
		limiter: NewSlidingWindowLimiter(client, config),
		addr:    opts.Addr,
		logger:  logger.Named("rate-limiter"),
	}
}

func (m *Module) Name() string {
	return "rate-limiter"
}

// Start checks the connection. An unreachable Redis is logged, not fatal:
// the middleware fails open.
func (m *Module) Start(ctx context.Context) error {
	if err := m.client.Ping(ctx).Err(); err != nil {
		m.logger.Warn("redis unreachable, auth routes will not be throttled",
			zap.String("addr", m.addr), zap.Error(err))
		return nil
	}
	m.logger.Info("connected to redis", zap.String("addr", m.addr))
	return nil
}

func (m *Module) Stop(_ context.Context) error {
	if err := m.client.Close(); err != nil {
		m.logger.Warn("error closing redis connection", zap.Error(err))
	}
	m.logger.Info("module stopped")
	return nil
}

func (m *Module) Health(ctx context.Context) mono.HealthStatus {
	if err := m.client.Ping(ctx).Err(); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("redis ping failed: %v", err),
		}
	}
	return mono.HealthStatus{Healthy: true, Message: "operational"}
}

// Handler returns the per-IP middleware for the auth routes.
func (m *Module) Handler() fiber.Handler {
	return IPRateLimit(m.limiter, m.logger)
}
