package hosting

import (
	"crypto/subtle"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rottenolives/rottenolives/src/features/config"
)

// RequestLoggerMiddleware logs all requests, at error level for 4xx/5xx.
func RequestLoggerMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start)
		status := c.Response().StatusCode()

		if status >= 400 {
			slog.Error("HTTP request",
				"method", c.Method(),
				"path", c.Path(),
				"status", status,
				"duration", duration.String(),
				"error", err,
			)
		} else {
			slog.Debug("HTTP request",
				"method", c.Method(),
				"path", c.Path(),
				"status", status,
				"duration", duration.String(),
			)
		}
		return err
	}
}

// AdminOnlyMiddleware gates a route group behind the admin credential:
// either the shared secret in the X-Admin-Key header or the cookie issued
// by /admin/login. With no admin key configured the whole surface stays
// closed.
func AdminOnlyMiddleware(cfg *config.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		adminCfg := cfg.Get().Admin

		if adminCfg.Key != "" {
			key := c.Get("X-Admin-Key")
			if key != "" && subtle.ConstantTimeCompare([]byte(key), []byte(adminCfg.Key)) == 1 {
				return c.Next()
			}
		}
		if adminCfg.Password != "" && c.Cookies(adminCookieName) == adminCookieValue {
			return c.Next()
		}

		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}
}
