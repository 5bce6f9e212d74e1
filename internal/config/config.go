package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/i474232898/smart-event-planner/internal/weather/providers"
)

type AppConfig struct {
	Port string

	// Weather provider selection and credentials.
	WeatherProvider      string
	OpenWeatherAPIKey    string
	WeatherAPIKey        string
	GoogleGeocoderAPIKey string

	// Outbound provider calls.
	HTTPTimeout        time.Duration
	ProviderMaxRetries int

	// Weather cache.
	CacheTTL           time.Duration
	CachePurgeInterval time.Duration

	// DatabaseURL selects PostgreSQL when set; otherwise events live in memory.
	DatabaseURL string

	// Inbound API protection.
	RateLimitMax     int
	RateLimitWindow  time.Duration
	CORSAllowOrigins string

	LogLevel  slog.Level
	LogFormat string

	MaxAlternativeDays int
}

// Load reads configuration from the environment (and a .env file when
// present) with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}
	cfg := &AppConfig{}
	var err error

	cfg.Port = getenvDefault("PORT", "8080")

	cfg.WeatherProvider = strings.ToLower(getenvDefault("WEATHER_PROVIDER", providers.OpenWeather))
	switch cfg.WeatherProvider {
	case providers.OpenWeather, providers.OpenMeteo, providers.WeatherAPI:
	default:
		return nil, fmt.Errorf("invalid WEATHER_PROVIDER: %q", cfg.WeatherProvider)
	}
	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.WeatherAPIKey = os.Getenv("WEATHERAPI_API_KEY")
	cfg.GoogleGeocoderAPIKey = os.Getenv("GOOGLE_GEOCODER_API_KEY")

	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.ProviderMaxRetries, err = getenvInt("PROVIDER_MAX_RETRIES", 0); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = getenvDuration("CACHE_TTL", 6*time.Hour); err != nil {
		return nil, err
	}
	if cfg.CachePurgeInterval, err = getenvDuration("CACHE_PURGE_INTERVAL", 30*time.Minute); err != nil {
		return nil, err
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")

	if cfg.RateLimitMax, err = getenvInt("RATE_LIMIT_MAX", 100); err != nil {
		return nil, err
	}
	if cfg.RateLimitWindow, err = getenvDuration("RATE_LIMIT_WINDOW", 15*time.Minute); err != nil {
		return nil, err
	}
	cfg.CORSAllowOrigins = getenvDefault("CORS_ALLOW_ORIGINS", "*")

	if err := cfg.LogLevel.UnmarshalText([]byte(getenvDefault("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	cfg.LogFormat = strings.ToLower(getenvDefault("LOG_FORMAT", "json"))
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("invalid LOG_FORMAT: %q", cfg.LogFormat)
	}

	if cfg.MaxAlternativeDays, err = getenvInt("MAX_ALTERNATIVE_DAYS", 31); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, v)
	}
	return n, nil
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return d, nil
}
