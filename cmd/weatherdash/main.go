package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/weatherdash/weatherdash/internal/api/http"
	"github.com/weatherdash/weatherdash/internal/config"
	"github.com/weatherdash/weatherdash/internal/scheduler"
	"github.com/weatherdash/weatherdash/internal/store"
	"github.com/weatherdash/weatherdash/internal/weather"
	"github.com/weatherdash/weatherdash/internal/weather/providers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound Open-Meteo calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	geocoder := providers.NewGeocodingClient(httpClient, cfg.GeocodingURL)
	archive := providers.NewArchiveSource(httpClient, cfg.ArchiveURL)
	forecast := providers.NewForecastSource(httpClient, cfg.ForecastURL)

	geoCache := store.NewMemory[weather.Location](cfg.CacheMaxSize, cfg.GeoCacheTTL)
	seriesCache := store.NewMemory[weather.SeriesResult](cfg.CacheMaxSize, cfg.SeriesCacheTTL)

	service := weather.NewService(geocoder, archive, forecast, weather.Options{
		CutoffDays:   cfg.ArchiveCutoffDays,
		HorizonDays:  cfg.ForecastHorizonDays,
		MinDate:      cfg.MinDate,
		FetchTimeout: cfg.FetchTimeout,
		GeoCache:     geoCache,
		SeriesCache:  seriesCache,
	})

	// Janitor that evicts expired cache entries between requests.
	janitor := scheduler.New(cfg.PruneInterval, geoCache, seriesCache)
	if err := janitor.Start(); err != nil {
		log.Fatalf("failed to start cache janitor: %v", err)
	}
	defer janitor.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "weatherdash",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          60 * time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weatherdash",
		})
	})

	httpapi.RegisterRoutes(app, service)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
