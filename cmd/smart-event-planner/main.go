package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpapi "github.com/i474232898/smart-event-planner/internal/api/http"
	"github.com/i474232898/smart-event-planner/internal/config"
	"github.com/i474232898/smart-event-planner/internal/events"
	"github.com/i474232898/smart-event-planner/internal/observability"
	"github.com/i474232898/smart-event-planner/internal/scheduler"
	"github.com/i474232898/smart-event-planner/internal/store"
	"github.com/i474232898/smart-event-planner/internal/suitability"
	"github.com/i474232898/smart-event-planner/internal/weather"
	"github.com/i474232898/smart-event-planner/internal/weather/providers"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := newLogger(cfg)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Provider with resilience (circuit breaker + optional backoff).
	provider, err := providers.New(cfg.WeatherProvider, providers.DefaultHTTPConfig(httpClient, cfg.ProviderMaxRetries), providers.Keys{
		OpenWeather: cfg.OpenWeatherAPIKey,
		WeatherAPI:  cfg.WeatherAPIKey,
	})
	if err != nil {
		log.Error("failed to create weather provider", "error", err)
		os.Exit(1)
	}
	var geocoder weather.Geocoder = provider
	if cfg.GoogleGeocoderAPIKey != "" {
		geocoder = providers.NewGoogleGeocoder(cfg.GoogleGeocoderAPIKey)
	}

	cache := weather.NewCache(cfg.CacheTTL, clock)
	weatherSvc := weather.NewService(geocoder, provider, cache, metrics, log.With("component", "weather"), cfg.HTTPTimeout)
	engine := suitability.NewEngine(weatherSvc, metrics)

	// Events live in PostgreSQL when configured, in memory otherwise.
	var eventStore events.Store
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("failed to create database pool", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		if err := pool.Ping(ctx); err != nil {
			log.Error("failed to reach database", "error", err)
			os.Exit(1)
		}
		pg := store.NewPostgresStore(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			log.Error("failed to prepare database schema", "error", err)
			os.Exit(1)
		}
		eventStore = pg
	} else {
		log.Warn("DATABASE_URL not set; events are kept in memory")
		eventStore = store.NewMemoryStore()
	}

	eventSvc := events.NewService(eventStore, weatherSvc, engine, clock, log.With("component", "events"), cfg.MaxAlternativeDays)

	// Scheduler that periodically sweeps the weather cache.
	sched := scheduler.New(weatherSvc, cfg.CachePurgeInterval, log.With("component", "scheduler"))
	if err := sched.Start(); err != nil {
		log.Error("failed to start scheduler", "error", err)
		os.Exit(1)
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "smart-event-planner",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          2*cfg.HTTPTimeout + 5*time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSAllowOrigins,
	}))
	app.Use("/api", limiter.New(limiter.Config{
		Max:        cfg.RateLimitMax,
		Expiration: cfg.RateLimitWindow,
		LimitReached: func(c *fiber.Ctx) error {
			return fiber.NewError(fiber.StatusTooManyRequests, "too many requests, please try again later")
		},
	}))

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "ok",
			"service":   "smart-event-planner",
			"provider":  provider.Name(),
			"timestamp": clock.Now().UTC(),
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// API routes.
	httpapi.RegisterRoutes(app, eventSvc, weatherSvc, engine)

	go func() {
		log.Info("listening", "port", cfg.Port, "provider", provider.Name())
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error("fiber server stopped", "error", err)
			stop()
		}
	}()

	// Wait for termination signal
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("error during shutdown", "error", err)
	}
}

func newLogger(cfg *config.AppConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
