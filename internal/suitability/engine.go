package suitability

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/i474232898/smart-event-planner/internal/observability"
	"github.com/i474232898/smart-event-planner/internal/weather"
)

// ForecastFetcher returns the full provider forecast for a location.
type ForecastFetcher interface {
	FetchForecast(ctx context.Context, location string) (weather.Forecast, error)
}

// Candidate is an alternative date whose projected weather scores at least Okay.
type Candidate struct {
	Date time.Time `json:"date"`
	Result
	Reading weather.Reading `json:"weather_data"`
}

// Engine scores readings and searches alternative dates, recording metrics
// for both.
type Engine struct {
	fetcher ForecastFetcher
	metrics *observability.Metrics
}

// NewEngine creates an Engine. A nil metrics uses an unregistered set.
func NewEngine(fetcher ForecastFetcher, metrics *observability.Metrics) *Engine {
	if metrics == nil {
		metrics = observability.NewMetricsForTesting()
	}
	return &Engine{fetcher: fetcher, metrics: metrics}
}

// Score rates r for eventType.
func (e *Engine) Score(r weather.Reading, eventType string) Result {
	res := Score(r, eventType)
	e.metrics.SuitabilityScores.WithLabelValues(string(res.Label)).Observe(float64(res.Score))
	return res
}

// SearchAlternatives fetches the forecast for location once and ranks every
// day in [start, end] that scores at least Okay.
func (e *Engine) SearchAlternatives(ctx context.Context, location string, start, end time.Time, eventType string) ([]Candidate, error) {
	if start.IsZero() || end.IsZero() {
		return nil, fmt.Errorf("%w: start and end dates are required", weather.ErrInvalidInput)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end date is before start date", weather.ErrInvalidInput)
	}

	forecast, err := e.fetcher.FetchForecast(ctx, location)
	if err != nil {
		return nil, err
	}
	e.metrics.AlternativeSearches.Inc()

	return Alternatives(forecast, start, end, eventType), nil
}

// Alternatives walks [start, end] one calendar day at a time, keeps the days
// scoring at least OkayThreshold, and orders them by descending score with
// earlier dates first on ties. Days without a forecast sample are skipped.
func Alternatives(forecast weather.Forecast, start, end time.Time, eventType string) []Candidate {
	out := []Candidate{}
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		r, err := forecast.ReadingAt(day)
		if errors.Is(err, weather.ErrNoDataForDate) {
			continue
		}
		res := Score(r, eventType)
		if res.Score < OkayThreshold {
			continue
		}
		out = append(out, Candidate{Date: day.UTC(), Result: res, Reading: r})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out
}
