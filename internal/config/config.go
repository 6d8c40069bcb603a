package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/i474232898/weather-export/internal/weather"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"

	EnvDev  = "dev"
	EnvProd = "prod"
)

// NamedLocation is a scheduled location given by name; it is geocoded at startup.
type NamedLocation struct {
	City    string
	Country string
}

type AppConfig struct {
	AppEnv   string
	LogLevel slog.Level
	Port     string

	// Database.
	DBDriver       string
	DBDSN          string // overrides SQLitePath when set
	SQLitePath     string
	DBMaxOpenConns int
	DBLogSQL       bool

	// Upstream.
	OpenMeteoBaseURL string
	UpstreamTimeout  time.Duration // 0 = no timeout

	// ExportWindow controls how far back exports look.
	ExportWindow time.Duration

	// Scheduled refresh. Nothing is scheduled when both lists are empty.
	FetchInterval  time.Duration
	Locations      []weather.Location
	NamedLocations []NamedLocation
	GeocoderAPIKey string
}

// Load reads configuration from environment with sensible defaults. A .env
// file in the working directory is loaded first when present.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	cfg := &AppConfig{}

	cfg.AppEnv = getenvDefault("APP_ENV", EnvDev)
	switch cfg.AppEnv {
	case EnvDev, EnvProd:
	default:
		return nil, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", cfg.AppEnv)
	}

	level, err := parseLogLevel(getenvDefault("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	cfg.Port = getenvDefault("PORT", "8080")

	cfg.DBDriver = getenvDefault("DB_DRIVER", DriverSQLite)
	switch cfg.DBDriver {
	case DriverSQLite, DriverPostgres:
	default:
		return nil, fmt.Errorf("invalid DB_DRIVER %q (allowed: %s, %s)", cfg.DBDriver, DriverSQLite, DriverPostgres)
	}
	cfg.DBDSN = getenvDefault("DB_DSN", "")
	if cfg.DBDriver == DriverPostgres && cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required when DB_DRIVER is %s", DriverPostgres)
	}
	cfg.SQLitePath = getenvDefault("SQLITE_PATH", "weather_data.db")

	cfg.DBMaxOpenConns, err = getenvInt("DB_MAX_OPEN_CONNS", 1)
	if err != nil {
		return nil, err
	}
	if cfg.DBMaxOpenConns < 0 {
		return nil, fmt.Errorf("DB_MAX_OPEN_CONNS must be >= 0, got %d", cfg.DBMaxOpenConns)
	}

	cfg.DBLogSQL, err = getenvBool("DB_LOG_SQL", false)
	if err != nil {
		return nil, err
	}

	cfg.OpenMeteoBaseURL = strings.TrimRight(getenvDefault("OPEN_METEO_BASE_URL", "https://api.open-meteo.com"), "/")

	cfg.UpstreamTimeout, err = getenvDuration("UPSTREAM_TIMEOUT", "0s")
	if err != nil {
		return nil, err
	}
	if cfg.UpstreamTimeout < 0 {
		return nil, fmt.Errorf("UPSTREAM_TIMEOUT must not be negative, got %v", cfg.UpstreamTimeout)
	}

	cfg.ExportWindow, err = getenvDuration("EXPORT_WINDOW", "48h")
	if err != nil {
		return nil, err
	}
	if cfg.ExportWindow <= 0 {
		return nil, fmt.Errorf("EXPORT_WINDOW must be positive, got %v", cfg.ExportWindow)
	}

	cfg.FetchInterval, err = getenvDuration("FETCH_INTERVAL", "60m")
	if err != nil {
		return nil, err
	}
	if cfg.FetchInterval <= 0 {
		return nil, fmt.Errorf("FETCH_INTERVAL must be positive, got %v", cfg.FetchInterval)
	}

	cfg.Locations, err = parseLocations(os.Getenv("WEATHER_LOCATIONS"))
	if err != nil {
		return nil, err
	}

	cfg.NamedLocations, err = loadNamedLocations()
	if err != nil {
		return nil, err
	}
	cfg.GeocoderAPIKey = getenvDefault("GEOCODER_API_KEY", "")

	return cfg, nil
}

// parseLocations parses "lat:lon;lat:lon". Empty input yields no locations.
func parseLocations(s string) ([]weather.Location, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var locs []weather.Location
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		latStr, lonStr, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("invalid WEATHER_LOCATIONS entry %q (expected lat:lon)", part)
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid WEATHER_LOCATIONS latitude %q: %w", latStr, err)
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid WEATHER_LOCATIONS longitude %q: %w", lonStr, err)
		}
		loc := weather.Location{Latitude: lat, Longitude: lon}
		if err := loc.Validate(); err != nil {
			return nil, fmt.Errorf("invalid WEATHER_LOCATIONS entry %q: %w", part, err)
		}
		locs = append(locs, loc)
	}
	return locs, nil
}

func loadNamedLocations() ([]NamedLocation, error) {
	city := strings.TrimSpace(os.Getenv("WEATHER_LOCATION_CITY"))
	country := strings.TrimSpace(os.Getenv("WEATHER_LOCATION_COUNTRY"))
	if city == "" && country == "" {
		return nil, nil
	}
	cities := strings.Split(city, ",")
	countries := strings.Split(country, ",")
	if len(cities) != len(countries) {
		return nil, fmt.Errorf("number of cities and countries must be the same")
	}
	var locs []NamedLocation
	for i := range cities {
		locs = append(locs, NamedLocation{
			City:    strings.TrimSpace(cities[i]),
			Country: strings.TrimSpace(countries[i]),
		})
	}
	return locs, nil
}

func parseLogLevel(s string) (slog.Level, error) {
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

func getenvInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

func getenvBool(key string, def bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return b, nil
}

func getenvDuration(key, def string) (time.Duration, error) {
	v := getenvDefault(key, def)
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}
