package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/openwander/wayfind/internal/config"
)

func Test_MustLoadFromEnv(t *testing.T) {
	t.Setenv("WAYFIND_ENV", "local")
	t.Setenv("WAYFIND_PORT", "9090")
	t.Setenv("WAYFIND_ROUTING_BASE_URL", "https://osrm.example.com")
	t.Setenv("WAYFIND_ROUTING_CITY", "krakow")
	t.Setenv("WAYFIND_ROUTING_PROFILE", "bicycle")
	t.Setenv("WAYFIND_ROUTING_TIMEOUT", "30s")
	t.Setenv("WAYFIND_GEOCODING_PROVIDER", "google")
	t.Setenv("WAYFIND_GEOCODING_API_KEY", "testAPIKey")
	t.Setenv("WAYFIND_GEOCODING_RATE_LIMIT", "5")
	t.Setenv("DB_HOST", "testHost")
	t.Setenv("DB_PORT", "12345")
	t.Setenv("DB_USERNAME", "admin")
	t.Setenv("DB_PASSWORD", "adminpass")
	t.Setenv("DB_NAME", "testName")

	cfg := config.MustLoad()

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "https://osrm.example.com", cfg.Routing.BaseURL)
	assert.Equal(t, "krakow", cfg.Routing.City)
	assert.Equal(t, "bicycle", cfg.Routing.Profile)
	assert.Equal(t, 30*time.Second, cfg.Routing.Timeout)
	assert.Equal(t, "google", cfg.Geocoding.ProviderType)
	assert.Equal(t, "testAPIKey", cfg.Geocoding.APIKey)
	assert.InEpsilon(t, 5.0, cfg.Geocoding.RateLimit, 0.0001)
	assert.Equal(t, "testHost", cfg.Database.Host)
	assert.Equal(t, "12345", cfg.Database.Port)
	assert.Equal(t, "admin", cfg.Database.User)
	assert.Equal(t, "adminpass", cfg.Database.Password)
	assert.Equal(t, "testName", cfg.Database.Name)
}

func Test_MustLoadDefaults(t *testing.T) {
	cfg := config.MustLoad()

	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "https://router.project-osrm.org", cfg.Routing.BaseURL)
	assert.Equal(t, "foot", cfg.Routing.Profile)
	assert.Equal(t, 15*time.Second, cfg.Routing.Timeout)
	assert.Equal(t, "nominatim", cfg.Geocoding.ProviderType)
}

func TestMustLoad_TimeoutError(t *testing.T) {
	t.Setenv("WAYFIND_ROUTING_TIMEOUT", "error_value")

	assert.PanicsWithValue(t, "failed to parse routing timeout from configuration", func() {
		config.MustLoad()
	})
}
