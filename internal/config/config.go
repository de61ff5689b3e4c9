package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the configuration settings for the route planning service.
//
// Fields:
// - Env: The current environment (e.g., local, development, production).
// - Port: The port for the HTTP API and monitoring server.
// - Routing: Configuration for the routing backend.
// - Geocoding: Configuration for the geocoding provider.
// - Database: Configuration settings for the PostgreSQL database.
type Config struct {
	Env       string          // Env is the current environment: local, development, production.
	Port      int             // Port is the HTTP server port.
	Routing   RoutingConfig   // Routing holds the routing backend configuration.
	Geocoding GeocodingConfig // Geocoding holds the geocoding provider configuration.
	Database  PostgresConfig  // Database holds the postgres database configuration.
}

// RoutingConfig holds the configuration for the routing backend.
type RoutingConfig struct {
	BaseURL string        // BaseURL is the routing backend address.
	City    string        // City scopes requests when the backend is a multi-tenant gateway.
	Profile string        // Profile is the default travel profile.
	Timeout time.Duration // Timeout bounds a single routing request.
}

// GeocodingConfig holds the configuration for the geocoding provider.
type GeocodingConfig struct {
	ProviderType string  // ProviderType specifies which geocoding provider to use.
	APIKey       string  // APIKey for accessing external services (required for Google).
	RateLimit    float64 // RateLimit is the allowed requests per second.
	UserAgent    string  // UserAgent identifies this service to the provider.
}

// PostgresConfig struct holds the configuration details for connecting to a PostgreSQL database.
type PostgresConfig struct {
	Host     string // Host is the database server address.
	Port     string // Port is the database server port.
	User     string // User is the database user.
	Password string // Password is the database user's password.
	Name     string // Name is the name of the database.
}

// MustLoad loads the configuration from the environment and returns a Config
// struct. A .env file in the working directory is honored when present.
// It panics when a value cannot be parsed.
func MustLoad() *Config {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("WAYFIND")
	v.AutomaticEnv()

	v.SetDefault("ENV", "production")
	v.SetDefault("PORT", 8080)
	v.SetDefault("ROUTING_BASE_URL", "https://router.project-osrm.org")
	v.SetDefault("ROUTING_CITY", "")
	v.SetDefault("ROUTING_PROFILE", "foot")
	v.SetDefault("ROUTING_TIMEOUT", "15s")
	v.SetDefault("GEOCODING_PROVIDER", "nominatim")
	v.SetDefault("GEOCODING_RATE_LIMIT", 1.0)
	v.SetDefault("GEOCODING_USER_AGENT", "")

	// Database variables keep their conventional unprefixed names.
	for _, key := range []string{"DB_HOST", "DB_PORT", "DB_USERNAME", "DB_PASSWORD", "DB_NAME"} {
		if err := v.BindEnv(key, key); err != nil {
			panic("failed to bind database environment variable: " + key)
		}
	}

	timeout, err := time.ParseDuration(v.GetString("ROUTING_TIMEOUT"))
	if err != nil {
		panic("failed to parse routing timeout from configuration")
	}

	return &Config{
		Env:  v.GetString("ENV"),
		Port: v.GetInt("PORT"),
		Routing: RoutingConfig{
			BaseURL: v.GetString("ROUTING_BASE_URL"),
			City:    v.GetString("ROUTING_CITY"),
			Profile: v.GetString("ROUTING_PROFILE"),
			Timeout: timeout,
		},
		Geocoding: GeocodingConfig{
			ProviderType: v.GetString("GEOCODING_PROVIDER"),
			APIKey:       v.GetString("GEOCODING_API_KEY"),
			RateLimit:    v.GetFloat64("GEOCODING_RATE_LIMIT"),
			UserAgent:    v.GetString("GEOCODING_USER_AGENT"),
		},
		Database: PostgresConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USERNAME"),
			Password: v.GetString("DB_PASSWORD"),
			Name:     v.GetString("DB_NAME"),
		},
	}
}
