package rating

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes registers the routes for the rating feature.
func RegisterRoutes(app *fiber.App, service *Service) {
	handler := NewHandler(service)

	app.Post("/rate", handler.Rate)
}
