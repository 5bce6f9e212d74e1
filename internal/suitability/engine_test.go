package suitability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/smart-event-planner/internal/observability"
	"github.com/i474232898/smart-event-planner/internal/weather"
)

var day0 = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

type countingFetcher struct {
	forecast weather.Forecast
	err      error
	calls    int
}

func (f *countingFetcher) FetchForecast(_ context.Context, _ string) (weather.Forecast, error) {
	f.calls++
	return f.forecast, f.err
}

func sample(day int, temp, pop, wind float64, desc string) weather.Sample {
	return weather.Sample{
		Timestamp:                day0.AddDate(0, 0, day),
		Temperature:              temp,
		PrecipitationProbability: pop,
		WindSpeed:                wind,
		ConditionDescription:     desc,
	}
}

// weekForecast scores, for a Wedding: day0=100, day1=15, day2=70, day3=100,
// day4 missing, day5=55.
func weekForecast() weather.Forecast {
	return weather.Forecast{
		sample(0, 22, 0.05, 10, "clear sky"),
		sample(1, 16, 0.5, 30, "rain"),
		sample(2, 22, 0.05, 20, "rain"),
		sample(3, 24, 0, 5, "few clouds"),
		sample(5, 22, 0.15, 20, "overcast clouds"),
	}
}

func TestAlternatives_RankedAndFiltered(t *testing.T) {
	got := Alternatives(weekForecast(), day0, day0.AddDate(0, 0, 5), Wedding)

	require.Len(t, got, 4)
	assert.Equal(t, day0, got[0].Date)
	assert.Equal(t, 100, got[0].Score)
	assert.Equal(t, day0.AddDate(0, 0, 3), got[1].Date, "equal scores keep the earlier date first")
	assert.Equal(t, 100, got[1].Score)
	assert.Equal(t, 70, got[2].Score)
	assert.Equal(t, Okay, got[2].Label)
	assert.Equal(t, 55, got[3].Score)

	for _, c := range got {
		assert.GreaterOrEqual(t, c.Score, OkayThreshold)
		assert.Equal(t, c.Date, c.Reading.SampledAt)
	}
}

func TestAlternatives_SingleDay(t *testing.T) {
	got := Alternatives(weekForecast(), day0, day0, Wedding)
	require.Len(t, got, 1)
	assert.Equal(t, day0, got[0].Date)

	got = Alternatives(weekForecast(), day0.AddDate(0, 0, 1), day0.AddDate(0, 0, 1), Wedding)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestAlternatives_BeyondForecastIsEmpty(t *testing.T) {
	got := Alternatives(weekForecast(), day0.AddDate(0, 0, 10), day0.AddDate(0, 0, 20), Wedding)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestEngine_SearchAlternativesFetchesOnce(t *testing.T) {
	fetcher := &countingFetcher{forecast: weekForecast()}
	metrics := observability.NewMetricsForTesting()
	e := NewEngine(fetcher, metrics)

	got, err := e.SearchAlternatives(context.Background(), "London", day0, day0.AddDate(0, 0, 6), Wedding)
	require.NoError(t, err)
	assert.Len(t, got, 4)
	assert.Equal(t, 1, fetcher.calls)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.AlternativeSearches))
}

func TestEngine_SearchAlternativesInvalidRange(t *testing.T) {
	fetcher := &countingFetcher{forecast: weekForecast()}
	e := NewEngine(fetcher, nil)

	_, err := e.SearchAlternatives(context.Background(), "London", day0.AddDate(0, 0, 2), day0, Wedding)
	require.ErrorIs(t, err, weather.ErrInvalidInput)

	_, err = e.SearchAlternatives(context.Background(), "London", time.Time{}, day0, Wedding)
	require.ErrorIs(t, err, weather.ErrInvalidInput)

	assert.Zero(t, fetcher.calls)
}

func TestEngine_SearchAlternativesPropagatesFetchError(t *testing.T) {
	boom := errors.New("boom")
	e := NewEngine(&countingFetcher{err: boom}, nil)

	_, err := e.SearchAlternatives(context.Background(), "London", day0, day0, Wedding)
	require.ErrorIs(t, err, boom)
}

func TestEngine_ScoreRecordsMetric(t *testing.T) {
	metrics := observability.NewMetricsForTesting()
	e := NewEngine(nil, metrics)

	res := e.Score(reading(22, 5, 10, "clear sky"), Wedding)
	assert.Equal(t, 100, res.Score)
	assert.Equal(t, 1, testutil.CollectAndCount(metrics.SuitabilityScores))
}
