package config

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes registers the routes for the config feature. The group is
// expected to carry the admin gate.
func RegisterRoutes(admin fiber.Router, configManager *Manager) {
	admin.Get("/config", func(c *fiber.Ctx) error {
		c.Set("Content-Type", "application/json")
		return c.SendString(configManager.GetJSON())
	})
}
