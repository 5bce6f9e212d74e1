package weather

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/i474232898/smart-event-planner/internal/observability"
)

// DefaultTimeout bounds a single geocode + forecast round-trip.
const DefaultTimeout = 10 * time.Second

// Service resolves (location, date) pairs to canonical readings, backed by a
// TTL cache. It never retries a failed provider call.
type Service struct {
	geocoder   Geocoder
	forecaster Forecaster
	cache      *Cache
	metrics    *observability.Metrics
	logger     *slog.Logger
	timeout    time.Duration

	// inflight collapses concurrent misses on the same cache key.
	inflight singleflight.Group
}

// NewService creates a new Service. Nil metrics or logger are replaced by
// unregistered metrics and slog.Default; a non-positive timeout uses DefaultTimeout.
func NewService(geo Geocoder, fc Forecaster, cache *Cache, metrics *observability.Metrics, logger *slog.Logger, timeout time.Duration) *Service {
	if cache == nil {
		cache = NewCache(DefaultCacheTTL, nil)
	}
	if metrics == nil {
		metrics = observability.NewMetricsForTesting()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Service{
		geocoder:   geo,
		forecaster: fc,
		cache:      cache,
		metrics:    metrics,
		logger:     logger,
		timeout:    timeout,
	}
}

// FetchReading returns the reading for location nearest to date, from the
// cache when a live entry exists and from the provider otherwise.
func (s *Service) FetchReading(ctx context.Context, location string, date time.Time) (Reading, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return Reading{}, fmt.Errorf("%w: location is required", ErrInvalidInput)
	}
	if date.IsZero() {
		return Reading{}, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	key := CacheKey(location, date)
	if r, ok := s.cache.Get(key); ok {
		s.metrics.CacheLookups.WithLabelValues("hit").Inc()
		return r, nil
	}
	s.metrics.CacheLookups.WithLabelValues("miss").Inc()

	// The flight is detached from any one caller and bounded by
	// FetchForecast's timeout. Callers stop waiting when their own ctx ends.
	flightCtx := context.WithoutCancel(ctx)
	ch := s.inflight.DoChan(key, func() (interface{}, error) {
		// Another caller may have filled the entry while we waited.
		if r, ok := s.cache.Get(key); ok {
			return r, nil
		}

		forecast, err := s.FetchForecast(flightCtx, location)
		if err != nil {
			return Reading{}, err
		}
		r, err := forecast.ReadingAt(date)
		if err != nil {
			return Reading{}, err
		}
		s.cache.Put(key, r)
		return r, nil
	})

	select {
	case <-ctx.Done():
		return Reading{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Reading{}, res.Err
		}
		return res.Val.(Reading), nil
	}
}

// FetchForecast geocodes location and returns the provider's full forecast
// list, sorted by time. Results are not cached; callers that evaluate many
// dates reuse the returned list.
func (s *Service) FetchForecast(ctx context.Context, location string) (Forecast, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, fmt.Errorf("%w: location is required", ErrInvalidInput)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	coords, err := s.geocode(ctx, location)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	forecast, err := s.forecaster.Forecast(ctx, coords)
	s.metrics.ProviderDuration.WithLabelValues("forecast").Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.ProviderRequests.WithLabelValues("forecast", "error").Inc()
		s.logger.Error("forecast fetch failed", "location", location, "error", err)
		return nil, fmt.Errorf("%w: forecast for %q: %v", ErrWeatherFetchFailed, location, err)
	}
	s.metrics.ProviderRequests.WithLabelValues("forecast", "success").Inc()

	sort.SliceStable(forecast, func(i, j int) bool {
		return forecast[i].Timestamp.Before(forecast[j].Timestamp)
	})
	return forecast, nil
}

func (s *Service) geocode(ctx context.Context, location string) (Coordinates, error) {
	start := time.Now()
	coords, err := s.geocoder.Geocode(ctx, location)
	s.metrics.ProviderDuration.WithLabelValues("geocode").Observe(time.Since(start).Seconds())

	switch {
	case errors.Is(err, ErrLocationNotFound):
		s.metrics.ProviderRequests.WithLabelValues("geocode", "not_found").Inc()
		return Coordinates{}, fmt.Errorf("%w: %q", ErrLocationNotFound, location)
	case err != nil:
		s.metrics.ProviderRequests.WithLabelValues("geocode", "error").Inc()
		s.logger.Error("geocoding failed", "location", location, "error", err)
		return Coordinates{}, fmt.Errorf("%w: geocode %q: %v", ErrWeatherFetchFailed, location, err)
	}
	s.metrics.ProviderRequests.WithLabelValues("geocode", "success").Inc()
	return coords, nil
}

// PurgeExpired sweeps expired entries from the cache. It is safe to call
// concurrently with lookups.
func (s *Service) PurgeExpired() int {
	n := s.cache.PurgeExpired()
	s.metrics.CachePurged.Add(float64(n))
	s.metrics.CacheEntries.Set(float64(s.cache.Len()))
	s.logger.Debug("weather cache swept", "removed", n, "remaining", s.cache.Len())
	return n
}

// CacheStatus reports the age of every cache entry.
func (s *Service) CacheStatus() []CacheStatus {
	return s.cache.Status()
}
