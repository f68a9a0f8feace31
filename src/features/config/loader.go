package config

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Load reads a YAML file from the given path and returns a new Manager.
// If the file doesn't exist, creates a default configuration.
func Load(path string) (*Manager, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		slog.Info("Config file not found, creating default configuration", "path", path)
		defaultCfg := createDefaultConfig()

		if err := saveDefaultConfig(path, defaultCfg); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}

		applyEnvOverrides(defaultCfg)
		return NewManager(defaultCfg), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, err
	}

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	applyEnvOverrides(&cfg)
	applyRatingDefaults(&cfg)

	return NewManager(&cfg), nil
}

// applyRatingDefaults backfills aggregation knobs a hand-written config file
// may leave out; zero values would disable rating entirely.
func applyRatingDefaults(cfg *Config) {
	if cfg.Rating.SubnetLimit <= 0 {
		cfg.Rating.SubnetLimit = 3
	}
	if cfg.Rating.SubnetWindowHours <= 0 {
		cfg.Rating.SubnetWindowHours = 24
	}
	if cfg.Rating.PriorMean <= 0 {
		cfg.Rating.PriorMean = 68
	}
	if cfg.Rating.PriorWeight <= 0 {
		cfg.Rating.PriorWeight = 50
	}
}

// applyEnvOverrides lets secrets come from the environment instead of the
// config file.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SPOTIFY_CLIENT_ID"); v != "" {
		cfg.Spotify.ClientID = v
	}
	if v := os.Getenv("SPOTIFY_CLIENT_SECRET"); v != "" {
		cfg.Spotify.ClientSecret = v
	}
	if v := os.Getenv("SPOTIFY_REFRESH_TOKEN"); v != "" {
		cfg.Spotify.RefreshToken = v
	}
	if v := os.Getenv("ADMIN_KEY"); v != "" {
		cfg.Admin.Key = v
	}
	if v := os.Getenv("ADMIN_PASSWORD"); v != "" {
		cfg.Admin.Password = v
	}
	if v := os.Getenv("IP_HASH_SALT"); v != "" {
		cfg.Rating.IPHashSalt = v
	}
	if v := os.Getenv("TELEGRAM_TOKEN"); v != "" {
		cfg.Telegram.Token = v
	}
}
