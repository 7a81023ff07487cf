package api

import (
	"strings"
	"time"

	"github.com/NathanHodgkiss447/smart-tasks/domain/user"
	"github.com/NathanHodgkiss447/smart-tasks/modules/auth"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	// UserContextKey is the key used to store user claims in the Fiber context.
	UserContextKey = "user"
	// RequestIDContextKey is where the requestid middleware leaves the id.
	RequestIDContextKey = "requestid"
)

// AuthMiddleware rejects requests without a valid bearer token and stores
// the claims for handlers.
func AuthMiddleware(authPort auth.AuthPort) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return unauthorized(c, "Authorization header is required")
		}
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return unauthorized(c, "Invalid authorization header format. Use: Bearer <token>")
		}
		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if token == "" {
			return unauthorized(c, "Token is required")
		}

		claims, err := authPort.ValidateToken(c.UserContext(), token)
		if err != nil {
			return unauthorized(c, "Invalid or expired token")
		}

		c.Locals(UserContextKey, claims)
		return c.Next()
	}
}

// RequestLogger logs one line per request once the handler chain returns.
func RequestLogger(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}
		fields := []zap.Field{
			zap.String("requestID", requestID(c)),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.String("clientIP", c.IP()),
			zap.Duration("latency", time.Since(start)),
			zap.String("userAgent", c.Get(fiber.HeaderUserAgent)),
		}
		if status >= fiber.StatusInternalServerError {
			logger.Error("request", fields...)
		} else {
			logger.Info("request", fields...)
		}
		return err
	}
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals(RequestIDContextKey).(string); ok {
		return id
	}
	return ""
}

func claimsFrom(c *fiber.Ctx) (*user.Claims, bool) {
	claims, ok := c.Locals(UserContextKey).(*user.Claims)
	return claims, ok && claims.UserID != ""
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
		Error:   "unauthorized",
		Message: message,
	})
}
