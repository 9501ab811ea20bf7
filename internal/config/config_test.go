package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"APP_ENV", "LOG_LEVEL", "PORT", "READINGS_PATH", "MODEL_PATH", "GEOCODER",
		"GEOCODER_API_KEY", "NOMINATIM_URL", "GEOCODER_USER_AGENT", "HTTP_TIMEOUT",
		"GEOCODE_CACHE_TTL", "CACHE_SWEEP_INTERVAL", "SEARCH_RADIUS_DEG", "DEFAULT_DATE",
		"AOD_PROVIDER", "AOD_PROVIDER_URL",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.AppEnv)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "data/sample_pm25_data.csv", cfg.ReadingsPath)
	assert.Equal(t, "data/aod_to_pm25_model.json", cfg.ModelPath)
	assert.Equal(t, GeocoderNominatim, cfg.Geocoder)
	assert.Equal(t, "airsense-app", cfg.UserAgent)
	assert.Equal(t, AODProviderOpenMeteo, cfg.AODProvider)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 24*time.Hour, cfg.GeocodeCacheTTL)
	assert.Equal(t, 15*time.Minute, cfg.CacheSweepInterval)
	assert.Equal(t, 1.0, cfg.SearchRadius)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), cfg.DefaultDate)
}

func TestLoad_overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "prod")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("GEOCODER", "google")
	t.Setenv("GEOCODER_API_KEY", "k")
	t.Setenv("SEARCH_RADIUS_DEG", "0.5")
	t.Setenv("DEFAULT_DATE", "2025-06-03")
	t.Setenv("AOD_PROVIDER", "none")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "prod", cfg.AppEnv)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, GeocoderGoogle, cfg.Geocoder)
	assert.Equal(t, 0.5, cfg.SearchRadius)
	assert.Equal(t, 3, cfg.DefaultDate.Day())
	assert.Equal(t, AODProviderNone, cfg.AODProvider)
}

func TestLoad_invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"app env":        {"APP_ENV": "staging"},
		"log level":      {"LOG_LEVEL": "loud"},
		"geocoder":       {"GEOCODER": "bing"},
		"google no key":  {"GEOCODER": "google"},
		"timeout":        {"HTTP_TIMEOUT": "soon"},
		"radius":         {"SEARCH_RADIUS_DEG": "wide"},
		"radius sign":    {"SEARCH_RADIUS_DEG": "-1"},
		"default date":   {"DEFAULT_DATE": "01/06/2025"},
		"sweep interval": {"CACHE_SWEEP_INTERVAL": "often"},
		"aod provider":   {"AOD_PROVIDER": "nasa"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
