package main

import (
	"log"
	"log/slog"
	"os"
	"os/signal"

	"github.com/rottenolives/rottenolives/src/features/config"
	"github.com/rottenolives/rottenolives/src/features/hosting"
	"github.com/rottenolives/rottenolives/src/features/importing"
	"github.com/rottenolives/rottenolives/src/features/library"
	"github.com/rottenolives/rottenolives/src/features/logging"
	"github.com/rottenolives/rottenolives/src/features/rating"
	"github.com/rottenolives/rottenolives/src/infra/database"
	"github.com/rottenolives/rottenolives/src/infra/spotify"
)

func main() {
	// Load configuration
	cfgManager, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Setup default logger with slog
	logger := logging.SetupLogger(cfgManager)
	slog.SetDefault(logger)

	// Create the database library
	db, err := database.NewSqliteLibrary(cfgManager.Get().Database.Path)
	if err != nil {
		log.Fatalf("failed to create library: %v", err)
	}

	// Create the catalog client
	spotifyCfg := cfgManager.Get().Spotify
	catalog := spotify.NewClient(spotifyCfg.ClientID, spotifyCfg.ClientSecret, spotifyCfg.RefreshToken)

	// Create the telegram notifier if enabled
	var notifier importing.Notifier
	if cfgManager.Get().Telegram.Enabled {
		telegramNotifier, err := importing.NewTelegramNotifier(cfgManager)
		if err != nil {
			slog.Error("Failed to initialize telegram notifier", "error", err)
		} else {
			notifier = telegramNotifier
		}
	}

	// Create the feature services
	importingService := importing.NewService(db, catalog, cfgManager, notifier)
	ratingService := rating.NewService(db, cfgManager)
	libraryService := library.NewService(db, cfgManager)

	// Create and start the HTTP server
	server := hosting.NewServer(cfgManager, importingService, ratingService, libraryService)
	go func() {
		if err := server.Start(); err != nil {
			slog.Error("server stopped", "error", err)
		}
	}()
	slog.Info("Server started. Press Ctrl+C to shut down.", "port", cfgManager.Get().Server.Port)

	// Wait for a shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	slog.Info("Shutting down server...")

	if err := server.Shutdown(); err != nil {
		log.Fatalf("failed to shutdown server: %v", err)
	}
	if err := db.Close(); err != nil {
		slog.Error("failed to close database", "error", err)
	}
	slog.Info("Server gracefully shut down.")
}
