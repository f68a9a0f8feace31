package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_CreatesDefaultFileWhenMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	manager, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Errorf("Expected a default config file at %s: %v", path, err)
	}

	cfg := manager.Get()
	if cfg.Database.Path == "" {
		t.Error("Expected a default database path")
	}
	if cfg.Server.Port == 0 {
		t.Error("Expected a default server port")
	}
	if cfg.Rating.SubnetLimit != 3 || cfg.Rating.SubnetWindowHours != 24 {
		t.Errorf("Unexpected rating defaults: %+v", cfg.Rating)
	}
	if cfg.Rating.PriorMean != 68 || cfg.Rating.PriorWeight != 50 {
		t.Errorf("Unexpected prior defaults: %+v", cfg.Rating)
	}
}

func TestLoad_BackfillsRatingDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 3000
database:
  path: olives.db
rating:
  ip_hash_salt: pepper
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	manager, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	cfg := manager.Get()
	if cfg.Rating.IPHashSalt != "pepper" {
		t.Errorf("Expected salt from file, got %q", cfg.Rating.IPHashSalt)
	}
	if cfg.Rating.SubnetLimit != 3 || cfg.Rating.SubnetWindowHours != 24 ||
		cfg.Rating.PriorMean != 68 || cfg.Rating.PriorWeight != 50 {
		t.Errorf("Expected rating defaults backfilled, got %+v", cfg.Rating)
	}
}

func TestLoad_FailsValidation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	// Missing the required database path.
	if err := os.WriteFile(path, []byte("server:\n  port: 3000\n"), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "validation") {
		t.Errorf("Expected a validation error, got %v", err)
	}
}

func TestLoad_EnvOverridesSecrets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
database:
  path: olives.db
spotify:
  client_id: from-file
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	t.Setenv("SPOTIFY_CLIENT_ID", "from-env")
	t.Setenv("ADMIN_KEY", "env-key")
	t.Setenv("IP_HASH_SALT", "env-salt")

	manager, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	cfg := manager.Get()
	if cfg.Spotify.ClientID != "from-env" {
		t.Errorf("Expected env override for client id, got %q", cfg.Spotify.ClientID)
	}
	if cfg.Admin.Key != "env-key" {
		t.Errorf("Expected env override for admin key, got %q", cfg.Admin.Key)
	}
	if cfg.Rating.IPHashSalt != "env-salt" {
		t.Errorf("Expected env override for salt, got %q", cfg.Rating.IPHashSalt)
	}
}

func TestGetJSON_RedactsSecrets(t *testing.T) {
	manager := NewManager(&Config{
		Database: Database{Path: "olives.db"},
		Spotify:  Spotify{ClientSecret: "hush", RefreshToken: "hush-too"},
		Admin:    Admin{Key: "hush-key", Password: "hush-pass"},
		Rating:   Rating{IPHashSalt: "hush-salt"},
	})

	out := manager.GetJSON()
	if strings.Contains(out, "hush") {
		t.Errorf("Expected secrets to be redacted, got %s", out)
	}
	if !strings.Contains(out, "<redacted>") {
		t.Errorf("Expected redaction markers, got %s", out)
	}
}
