package importing

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes registers the routes for the importing feature. The group
// is expected to carry the admin gate.
func RegisterRoutes(admin fiber.Router, service *Service) {
	handler := NewHandler(service)

	admin.Get("/import/preview", handler.Preview)
	admin.Post("/import", handler.Import)
}
