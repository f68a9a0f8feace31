package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// createDefaultConfig creates a new Config with sensible default values.
func createDefaultConfig() *Config {
	return &Config{
		Server: Server{
			PrintRoutes: false,
			Port:        3536,
		},
		Logger: Logger{
			Enabled: true,
			Level:   "info",
			Format:  "text",
		},
		Database: Database{
			Path: "./olives.db",
		},
		Spotify: Spotify{
			Market: "",
		},
		Admin: Admin{},
		Rating: Rating{
			SubnetLimit:       3,
			SubnetWindowHours: 24,
			PriorMean:         68,
			PriorWeight:       50,
		},
		Telegram: Telegram{
			Enabled: false,
		},
	}
}

// saveDefaultConfig writes the default configuration to the given path.
func saveDefaultConfig(path string, cfg *Config) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode default config: %w", err)
	}
	return nil
}
