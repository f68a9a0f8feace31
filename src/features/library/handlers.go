package library

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

// Handler handles HTTP requests for the library feature.
type Handler struct {
	service *Service
}

// NewHandler creates a new library handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GetReleases handles GET /releases.
func (h *Handler) GetReleases(c *fiber.Ctx) error {
	menaOnly := c.Query("mena") == "true"
	releases, err := h.service.GetReleases(c.Context(), menaOnly)
	if err != nil {
		slog.Error("Failed to list releases", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list releases",
		})
	}
	return c.JSON(fiber.Map{
		"releases": releases,
	})
}

// GetRelease handles GET /releases/:id.
func (h *Handler) GetRelease(c *fiber.Ctx) error {
	detail, err := h.service.GetReleaseDetail(c.Context(), c.Params("id"))
	if err != nil {
		slog.Error("Failed to get release", "error", err, "id", c.Params("id"))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if detail == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Not found",
		})
	}
	return c.JSON(detail)
}
