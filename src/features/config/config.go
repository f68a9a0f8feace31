package config

// Config holds the application configuration.
type Config struct {
	Server   Server   `yaml:"server"`
	Logger   Logger   `yaml:"logger"`
	Database Database `yaml:"database"`
	Spotify  Spotify  `yaml:"spotify"`
	Admin    Admin    `yaml:"admin"`
	Rating   Rating   `yaml:"rating"`
	Telegram Telegram `yaml:"telegram"`
}

// Server holds the configuration for the Fiber server.
type Server struct {
	PrintRoutes bool   `yaml:"show_routes"`
	Port        uint32 `yaml:"port"`
}

// Logger holds the configuration for the app logging.
type Logger struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level"`
	Format  string `yaml:"format"`
}

// Database holds the configuration for the database.
type Database struct {
	Path string `yaml:"path" validate:"required"`
}

// Spotify holds the credentials for the external catalog API.
// The secrets are normally supplied through SPOTIFY_CLIENT_ID,
// SPOTIFY_CLIENT_SECRET and SPOTIFY_REFRESH_TOKEN rather than the file.
type Spotify struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RefreshToken string `yaml:"refresh_token"`
	Market       string `yaml:"market"`
}

// Admin holds the credentials that gate the import endpoints.
// Key is a shared secret presented in the X-Admin-Key header; Password is
// exchanged for the admin cookie via /admin/login.
type Admin struct {
	Key      string `yaml:"key"`
	Password string `yaml:"password"`
}

// Rating holds the knobs of the score aggregation and abuse gating.
type Rating struct {
	IPHashSalt        string  `yaml:"ip_hash_salt"`
	SubnetLimit       int     `yaml:"subnet_limit"`
	SubnetWindowHours int     `yaml:"subnet_window_hours"`
	PriorMean         float64 `yaml:"prior_mean"`
	PriorWeight       float64 `yaml:"prior_weight"`
}

// Telegram holds the configuration for import-run notifications.
type Telegram struct {
	Enabled bool   `yaml:"enabled"`
	Token   string `yaml:"token"`
	ChatID  int64  `yaml:"chat_id"`
}
