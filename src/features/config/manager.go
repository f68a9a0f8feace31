package config

import (
	"encoding/json"
	"log/slog"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// Manager holds the application configuration and provides thread-safe access to it.
type Manager struct {
	mu     sync.RWMutex
	config *Config
}

// NewManager creates a new Manager.
func NewManager(config *Config) *Manager {
	return &Manager{config: config}
}

// Get returns the current configuration.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// Update updates the configuration.
func (m *Manager) Update(config *Config) {
	m.mu.Lock()
	defer m.mu.Unlock()

	oldConfig := m.config
	m.config = config

	if oldConfig != nil {
		slog.Debug("Configuration updated",
			"database_path_changed", oldConfig.Database.Path != config.Database.Path,
			"telegram_enabled_changed", oldConfig.Telegram.Enabled != config.Telegram.Enabled,
			"logger_level_changed", oldConfig.Logger.Level != config.Logger.Level,
		)
	}
}

// Save writes the current configuration to the specified file path.
func (m *Manager) Save(path string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	file, err := os.Create(path)
	if err != nil {
		slog.Error("failed to create config file", "path", path, "error", err)
		return err
	}
	defer file.Close()

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)
	if err := encoder.Encode(m.config); err != nil {
		slog.Error("failed to encode config", "path", path, "error", err)
		return err
	}

	slog.Info("Configuration saved successfully", "path", path)
	return nil
}

// redactedCfg gets a redacted copy of the Config.
func (m *Manager) redactedCfg() Config {
	var cfgCpy = *m.Get()
	if cfgCpy.Spotify.ClientSecret != "" {
		cfgCpy.Spotify.ClientSecret = "<redacted>"
	}
	if cfgCpy.Spotify.RefreshToken != "" {
		cfgCpy.Spotify.RefreshToken = "<redacted>"
	}
	if cfgCpy.Admin.Key != "" {
		cfgCpy.Admin.Key = "<redacted>"
	}
	if cfgCpy.Admin.Password != "" {
		cfgCpy.Admin.Password = "<redacted>"
	}
	if cfgCpy.Rating.IPHashSalt != "" {
		cfgCpy.Rating.IPHashSalt = "<redacted>"
	}
	if cfgCpy.Telegram.Token != "" {
		cfgCpy.Telegram.Token = "<redacted>"
	}
	return cfgCpy
}

// GetJSON returns the current configuration as a JSON string.
func (m *Manager) GetJSON() string {
	jsonBytes, err := json.Marshal(m.redactedCfg())
	if err != nil {
		slog.Error("failed to marshal config to JSON", "error", err)
		return err.Error()
	}
	return string(jsonBytes)
}
