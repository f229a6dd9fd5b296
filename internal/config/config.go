package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/weatherdash/weatherdash/internal/weather"
)

// AppConfig holds all deployment-level knobs. Everything has a default; the
// endpoint overrides exist for tests and self-hosted Open-Meteo instances.
type AppConfig struct {
	Port string

	// HTTPTimeout bounds the shared outbound HTTP client; FetchTimeout
	// bounds each individual source call inside the pipeline.
	HTTPTimeout  time.Duration
	FetchTimeout time.Duration

	// ArchiveCutoffDays is the number of days before today beyond which
	// only the archive dataset is queried.
	ArchiveCutoffDays int

	// ForecastHorizonDays caps how far into the future a range may extend.
	ForecastHorizonDays int

	// MinDate is the earliest queryable calendar date.
	MinDate time.Time

	// Upstream endpoint overrides (empty = public Open-Meteo endpoints).
	GeocodingURL string
	ArchiveURL   string
	ForecastURL  string

	// Cache retention.
	GeoCacheTTL    time.Duration
	SeriesCacheTTL time.Duration
	CacheMaxSize   int
	PruneInterval  time.Duration
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg := &AppConfig{
		Port:         getenvDefault("PORT", "8080"),
		GeocodingURL: os.Getenv("GEOCODING_API_URL"),
		ArchiveURL:   os.Getenv("ARCHIVE_API_URL"),
		ForecastURL:  os.Getenv("FORECAST_API_URL"),
	}

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "20s"); err != nil {
		return nil, err
	}
	if cfg.FetchTimeout, err = getenvDuration("FETCH_TIMEOUT", "30s"); err != nil {
		return nil, err
	}
	if cfg.GeoCacheTTL, err = getenvDuration("GEOCODE_CACHE_TTL", "1h"); err != nil {
		return nil, err
	}
	if cfg.SeriesCacheTTL, err = getenvDuration("SERIES_CACHE_TTL", "30m"); err != nil {
		return nil, err
	}
	if cfg.PruneInterval, err = getenvDuration("CACHE_PRUNE_INTERVAL", "10m"); err != nil {
		return nil, err
	}

	cfg.ArchiveCutoffDays = getenvInt("ARCHIVE_CUTOFF_DAYS", 5)
	cfg.ForecastHorizonDays = getenvInt("FORECAST_HORIZON_DAYS", 16)
	cfg.CacheMaxSize = getenvInt("CACHE_MAX_ENTRIES", 256)

	minDateStr := getenvDefault("MIN_DATE", "1950-01-01")
	minDate, err := weather.ParseDate(minDateStr)
	if err != nil {
		return nil, fmt.Errorf("invalid MIN_DATE: %w", err)
	}
	cfg.MinDate = minDate

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
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
