package importing

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

// Handler handles HTTP requests for the importing feature.
type Handler struct {
	service *Service
}

// NewHandler creates a new importing handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// ImportRequest is the body of POST /import.
type ImportRequest struct {
	PlaylistID string `json:"playlistId"`
	Market     string `json:"market"`
	IsMena     bool   `json:"isMena"`
	DryRun     bool   `json:"dryRun"`
}

// Preview handles GET /import/preview?playlistId=&market=.
func (h *Handler) Preview(c *fiber.Ctx) error {
	slog.Debug("Preview handler called")

	playlistID := c.Query("playlistId")
	if playlistID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "playlistId is required",
		})
	}

	preview, err := h.service.Preview(c.Context(), playlistID, c.Query("market"))
	if err != nil {
		return importError(c, err)
	}
	return c.JSON(preview)
}

// Import handles POST /import.
func (h *Handler) Import(c *fiber.Ctx) error {
	slog.Debug("Import handler called")

	var req ImportRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.PlaylistID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "playlistId is required",
		})
	}

	result, err := h.service.Import(c.Context(), req.PlaylistID, req.Market, req.IsMena, req.DryRun)
	if err != nil {
		return importError(c, err)
	}
	return c.JSON(result)
}

// importError maps pipeline errors onto HTTP statuses. The raw message is
// surfaced so the admin UI can show the upstream status and body.
func importError(c *fiber.Ctx, err error) error {
	if errors.Is(err, ErrInvalidPlaylist) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	slog.Error("Import failed", "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": err.Error(),
	})
}
