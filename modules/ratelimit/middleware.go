package ratelimit

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// IPRateLimit returns Fiber middleware limiting requests per client IP. A
// limiter error lets the request through.
func IPRateLimit(limiter Limiter, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ip := c.IP()
		if ip == "" {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error":   "forbidden",
				"message": "Unable to determine client IP address",
			})
		}

		result, err := limiter.Allow(c.UserContext(), ip)
		if err != nil {
			logger.Warn("rate limiter unavailable, allowing request",
				zap.String("ip", ip), zap.Error(err))
			return c.Next()
		}

		setRateLimitHeaders(c, result, limiter.Limit())
		if !result.Allowed {
			return sendRateLimitExceeded(c, result)
		}
		return c.Next()
	}
}

func setRateLimitHeaders(c *fiber.Ctx, result *Result, limit int) {
	c.Set("X-RateLimit-Limit", strconv.Itoa(limit))
	c.Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	c.Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}

func sendRateLimitExceeded(c *fiber.Ctx, result *Result) error {
	retryAfter := int(result.RetryAfter.Seconds())
	if retryAfter < 1 {
		retryAfter = 1
	}
	c.Set(fiber.HeaderRetryAfter, strconv.Itoa(retryAfter))

	return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
		"error":      "too_many_requests",
		"message":    fmt.Sprintf("Rate limit exceeded. Please retry after %d seconds.", retryAfter),
		"retryAfter": retryAfter,
	})
}
