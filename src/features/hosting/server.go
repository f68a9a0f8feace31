package hosting

import (
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/rottenolives/rottenolives/src/features/config"
	"github.com/rottenolives/rottenolives/src/features/importing"
	"github.com/rottenolives/rottenolives/src/features/library"
	"github.com/rottenolives/rottenolives/src/features/metrics"
	"github.com/rottenolives/rottenolives/src/features/rating"
)

// Server is the HTTP server for the application.
type Server struct {
	app  *fiber.App
	port uint32
}

// NewServer creates a new HTTP server.
func NewServer(cfg *config.Manager, importingService *importing.Service, ratingService *rating.Service, libraryService *library.Service) *Server {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			slog.Error("Internal Server Error", "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
		AppName:               "Rotten Olives",
		DisableStartupMessage: true,
		EnablePrintRoutes:     cfg.Get().Server.PrintRoutes,
	})

	app.Use(RequestLoggerMiddleware())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})
	metrics.RegisterRoutes(app)

	// Public surface
	library.RegisterRoutes(app, libraryService)
	rating.RegisterRoutes(app, ratingService)

	// Admin surface: login and ping are open, the rest requires the admin
	// key header or the login cookie.
	adminHandler := NewAdminHandler(cfg)
	app.Post("/admin/login", adminHandler.Login)
	app.Get("/admin/ping", adminHandler.Ping)

	admin := app.Group("/admin", AdminOnlyMiddleware(cfg))
	importing.RegisterRoutes(admin, importingService)
	config.RegisterRoutes(admin, cfg)

	return &Server{app: app, port: cfg.Get().Server.Port}
}

// App exposes the underlying fiber app. Used by tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.app.Listen(":" + fmt.Sprint(s.port))
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
