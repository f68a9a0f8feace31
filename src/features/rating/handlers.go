package rating

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/rottenolives/rottenolives/src/music"
)

// Handler handles HTTP requests for the rating feature.
type Handler struct {
	service *Service
}

// NewHandler creates a new rating handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RateRequest is the body of POST /rate.
type RateRequest struct {
	ReleaseID string `json:"releaseId"`
	Stars     int    `json:"stars"`
	Comment   string `json:"comment"`
	Name      string `json:"name"`
}

// Rate handles POST /rate.
func (h *Handler) Rate(c *fiber.Ctx) error {
	slog.Debug("Rate handler called")

	var req RateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	rating, err := h.service.Submit(c.Context(), SubmitRequest{
		ReleaseID:    req.ReleaseID,
		Stars:        req.Stars,
		Comment:      req.Comment,
		Name:         req.Name,
		ForwardedFor: c.Get("X-Forwarded-For"),
		RemoteIP:     c.IP(),
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		case errors.Is(err, ErrUnknownRelease):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Release not found",
			})
		case errors.Is(err, music.ErrDuplicateRating):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "A rating from your network already exists for this release.",
			})
		case errors.Is(err, ErrSubnetLimited):
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "We see many ratings from your network today. Try again later.",
			})
		}
		slog.Error("Failed to submit rating", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"ok":     true,
		"rating": rating,
	})
}
