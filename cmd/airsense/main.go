package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	"github.com/i474232898/airsense/internal/airquality"
	"github.com/i474232898/airsense/internal/airquality/geocoders"
	"github.com/i474232898/airsense/internal/airquality/providers"
	httpapi "github.com/i474232898/airsense/internal/api/http"
	"github.com/i474232898/airsense/internal/config"
	"github.com/i474232898/airsense/internal/logging"
	"github.com/i474232898/airsense/internal/regression"
	"github.com/i474232898/airsense/internal/scheduler"
	"github.com/i474232898/airsense/internal/store"
	"github.com/i474232898/airsense/internal/views"
)

const appName = "airsense"

// Set with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	slog.SetDefault(logging.New(os.Stdout, cfg.AppEnv, cfg.LogLevel, "app", appName, "version", version))

	// Readings and model are loaded once and never change afterwards.
	readings, err := store.LoadFile(cfg.ReadingsPath)
	if err != nil {
		slog.Error("failed to load readings", "path", cfg.ReadingsPath, "err", err)
		os.Exit(1)
	}
	slog.Info("readings loaded", "path", cfg.ReadingsPath, "rows", readings.Len())

	model, err := regression.Load(cfg.ModelPath)
	if err != nil {
		slog.Error("failed to load model", "path", cfg.ModelPath, "err", err)
		os.Exit(1)
	}

	renderer, err := views.NewRenderer()
	if err != nil {
		slog.Error("failed to parse templates", "err", err)
		os.Exit(1)
	}

	// Shared HTTP client for outbound geocoding and AOD calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	base, err := newGeocoder(cfg, httpClient)
	if err != nil {
		slog.Error("failed to configure geocoder", "err", err)
		os.Exit(1)
	}
	cached := geocoders.NewCachingGeocoder(base, cfg.GeocodeCacheTTL)

	service := airquality.NewService(readings, cached, model, cfg.SearchRadius)
	if cfg.AODProvider == config.AODProviderOpenMeteo {
		service.WithAODProvider(providers.NewOpenMeteoProvider(httpClient, cfg.AODProviderURL))
	}

	sched := scheduler.New(cfg.CacheSweepInterval, cached)
	if err := sched.Start(); err != nil {
		slog.Error("failed to start scheduler", "err", err)
		os.Exit(1)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               appName,
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          cfg.HTTPTimeout + 10*time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": appName,
		})
	})

	httpapi.RegisterRoutes(app, service, renderer, httpapi.DefaultControls(cfg.DefaultDate))

	go func() {
		slog.Info("listening", "port", cfg.Port, "geocoder", base.Name(), "aod_provider", cfg.AODProvider)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("fiber server stopped", "err", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("error during shutdown", "err", err)
	}
}

func newGeocoder(cfg *config.AppConfig, client *http.Client) (airquality.Geocoder, error) {
	if cfg.Geocoder == config.GeocoderGoogle {
		return geocoders.NewGoogleGeocoder(cfg.GeocoderAPIKey)
	}
	return geocoders.NewNominatimGeocoder(client, cfg.NominatimURL, cfg.UserAgent), nil
}
