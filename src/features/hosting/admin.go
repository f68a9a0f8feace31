package hosting

import (
	"crypto/subtle"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rottenolives/rottenolives/src/features/config"
)

const (
	adminCookieName  = "admin"
	adminCookieValue = "1"
	adminCookieTTL   = 7 * 24 * time.Hour
)

// AdminHandler issues and checks the admin session cookie.
type AdminHandler struct {
	config *config.Manager
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(cfg *config.Manager) *AdminHandler {
	return &AdminHandler{config: cfg}
}

// LoginRequest is the body of POST /admin/login.
type LoginRequest struct {
	Password string `json:"password"`
}

// Login exchanges the admin password for the admin cookie.
func (h *AdminHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	password := h.config.Get().Admin.Password
	if password == "" || subtle.ConstantTimeCompare([]byte(req.Password), []byte(password)) != 1 {
		slog.Debug("Admin login rejected")
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"ok":    false,
			"error": "Invalid password",
		})
	}

	c.Cookie(&fiber.Cookie{
		Name:     adminCookieName,
		Value:    adminCookieValue,
		Expires:  time.Now().Add(adminCookieTTL),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
	return c.JSON(fiber.Map{"ok": true})
}

// Ping reports whether the caller holds the admin cookie.
func (h *AdminHandler) Ping(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"ok":     true,
		"authed": c.Cookies(adminCookieName) == adminCookieValue,
	})
}
