package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/i474232898/airsense/internal/airquality"
)

// Geocoder backends.
const (
	GeocoderNominatim = "nominatim"
	GeocoderGoogle    = "google"
)

// Live AOD backends.
const (
	AODProviderOpenMeteo = "openmeteo"
	AODProviderNone      = "none"
)

type AppConfig struct {
	AppEnv   string
	LogLevel slog.Level
	Port     string

	ReadingsPath string
	ModelPath    string

	Geocoder       string
	GeocoderAPIKey string
	NominatimURL   string
	UserAgent      string

	AODProvider    string
	AODProviderURL string

	HTTPTimeout time.Duration

	// Geocode cache retention and sweep cadence.
	GeocodeCacheTTL    time.Duration
	CacheSweepInterval time.Duration

	// SearchRadius is the half-width in degrees of the historical search box.
	SearchRadius float64
	DefaultDate  time.Time
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "err", err)
	}
	cfg := &AppConfig{}
	var err error

	cfg.AppEnv = strings.ToLower(getenvDefault("APP_ENV", "dev"))
	switch cfg.AppEnv {
	case "dev", "prod":
	default:
		return nil, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", cfg.AppEnv)
	}

	if cfg.LogLevel, err = ParseLogLevel(getenvDefault("LOG_LEVEL", "info")); err != nil {
		return nil, err
	}
	cfg.Port = getenvDefault("PORT", "8080")

	cfg.ReadingsPath = getenvDefault("READINGS_PATH", "data/sample_pm25_data.csv")
	cfg.ModelPath = getenvDefault("MODEL_PATH", "data/aod_to_pm25_model.json")

	cfg.Geocoder = strings.ToLower(getenvDefault("GEOCODER", GeocoderNominatim))
	cfg.GeocoderAPIKey = os.Getenv("GEOCODER_API_KEY")
	cfg.NominatimURL = os.Getenv("NOMINATIM_URL")
	cfg.UserAgent = getenvDefault("GEOCODER_USER_AGENT", "airsense-app")
	switch cfg.Geocoder {
	case GeocoderNominatim:
	case GeocoderGoogle:
		if cfg.GeocoderAPIKey == "" {
			return nil, fmt.Errorf("GEOCODER=google requires GEOCODER_API_KEY")
		}
	default:
		return nil, fmt.Errorf("invalid GEOCODER %q (allowed: nominatim, google)", cfg.Geocoder)
	}

	cfg.AODProvider = strings.ToLower(getenvDefault("AOD_PROVIDER", AODProviderOpenMeteo))
	cfg.AODProviderURL = os.Getenv("AOD_PROVIDER_URL")
	switch cfg.AODProvider {
	case AODProviderOpenMeteo, AODProviderNone:
	default:
		return nil, fmt.Errorf("invalid AOD_PROVIDER %q (allowed: openmeteo, none)", cfg.AODProvider)
	}

	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.GeocodeCacheTTL, err = getenvDuration("GEOCODE_CACHE_TTL", "24h"); err != nil {
		return nil, err
	}
	if cfg.CacheSweepInterval, err = getenvDuration("CACHE_SWEEP_INTERVAL", "15m"); err != nil {
		return nil, err
	}

	if cfg.SearchRadius, err = getenvFloat("SEARCH_RADIUS_DEG", airquality.DefaultSearchRadius); err != nil {
		return nil, err
	}
	if cfg.SearchRadius <= 0 {
		return nil, fmt.Errorf("invalid SEARCH_RADIUS_DEG: must be positive")
	}

	dateStr := getenvDefault("DEFAULT_DATE", "2025-06-01")
	cfg.DefaultDate, err = time.Parse(airquality.DateLayout, dateStr)
	if err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_DATE: %w", err)
	}

	return cfg, nil
}

// ParseLogLevel maps debug/info/warn/error onto slog levels.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}

func getenvDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getenvFloat(key string, def float64) (float64, error) {
	v := getenvDefault(key, "")
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}
