package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/smart-event-planner/internal/events"
	"github.com/i474232898/smart-event-planner/internal/store"
	"github.com/i474232898/smart-event-planner/internal/suitability"
	"github.com/i474232898/smart-event-planner/internal/weather"
)

var eventDate = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

type fakeWeather struct {
	reading weather.Reading
	err     error
	status  []weather.CacheStatus

	location string
	date     time.Time
}

func (f *fakeWeather) FetchReading(_ context.Context, location string, date time.Time) (weather.Reading, error) {
	f.location, f.date = location, date
	return f.reading, f.err
}

func (f *fakeWeather) CacheStatus() []weather.CacheStatus {
	return f.status
}

type stubFetcher struct {
	forecast weather.Forecast
}

func (f stubFetcher) FetchForecast(context.Context, string) (weather.Forecast, error) {
	return f.forecast, nil
}

type failingEvents struct {
	EventService
}

func (failingEvents) List(context.Context) ([]events.Event, error) {
	return nil, errors.New("database is on fire")
}

func sunny() weather.Reading {
	return weather.Reading{Temperature: 22, Precipitation: 5, WindSpeed: 10, Description: "clear sky", SampledAt: eventDate}
}

func newTestApp(t *testing.T, fw *fakeWeather, forecast weather.Forecast) *fiber.App {
	t.Helper()
	engine := suitability.NewEngine(stubFetcher{forecast: forecast}, nil)
	svc := events.NewService(store.NewMemoryStore(), fw, engine, nil, nil, 7)

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	RegisterRoutes(app, svc, fw, engine)
	return app
}

func do(t *testing.T, app *fiber.App, method, target, body string) (int, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func createEvent(t *testing.T, app *fiber.App) string {
	t.Helper()
	code, body := do(t, app, http.MethodPost, "/api/events",
		`{"name":"Ann & Bob","location":"London","date":"2026-06-01T12:00:00Z","event_type":"Wedding","category":"family"}`)
	require.Equal(t, http.StatusCreated, code, body)
	return body["data"].(map[string]any)["id"].(string)
}

func TestCreateEvent(t *testing.T) {
	fw := &fakeWeather{reading: sunny()}
	app := newTestApp(t, fw, nil)

	code, body := do(t, app, http.MethodPost, "/api/events",
		`{"name":"Ann & Bob","location":"London","date":"2026-06-01T12:00:00Z","event_type":"Wedding","category":"family"}`)

	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "success", body["status"])
	data := body["data"].(map[string]any)
	analysis := data["analysis"].(map[string]any)
	assert.Equal(t, 100.0, analysis["weather_score"])
	assert.Equal(t, "Good", analysis["suitability"])
	assert.Equal(t, "London", fw.location)
	assert.Equal(t, eventDate, fw.date)
}

func TestCreateEventValidation(t *testing.T) {
	app := newTestApp(t, &fakeWeather{reading: sunny()}, nil)

	tests := []struct {
		name string
		body string
	}{
		{"missing category", `{"name":"x","location":"London","date":"2026-06-01","event_type":"Wedding"}`},
		{"bad date", `{"name":"x","location":"London","date":"June 1st","event_type":"Wedding","category":"c"}`},
		{"malformed json", `{"name":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := do(t, app, http.MethodPost, "/api/events", tt.body)
			assert.Equal(t, http.StatusBadRequest, code)
			assert.Equal(t, "error", body["status"])
			assert.NotEmpty(t, body["message"])
		})
	}
}

func TestWeatherErrorsMapToStatus(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{weather.ErrLocationNotFound, http.StatusNotFound},
		{weather.ErrNoDataForDate, http.StatusNotFound},
		{weather.ErrWeatherFetchFailed, http.StatusServiceUnavailable},
		{weather.ErrInvalidInput, http.StatusBadRequest},
		{errors.New("unexpected"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			app := newTestApp(t, &fakeWeather{err: tt.err}, nil)
			code, body := do(t, app, http.MethodGet, "/api/weather/London/2026-06-01", "")
			assert.Equal(t, tt.code, code)
			assert.Equal(t, "error", body["status"])
		})
	}
}

func TestUnknownErrorsAreNotLeaked(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	engine := suitability.NewEngine(stubFetcher{}, nil)
	RegisterRoutes(app, failingEvents{}, &fakeWeather{}, engine)

	code, body := do(t, app, http.MethodGet, "/api/events", "")
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "internal server error", body["message"])
}

func TestGetEventNotFound(t *testing.T) {
	app := newTestApp(t, &fakeWeather{reading: sunny()}, nil)

	code, body := do(t, app, http.MethodGet, "/api/events/6f1c1b9e-2c44-4c1a-9a43-7d0e1f5b3a10", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "event not found", body["message"])
}

func TestEventSuitability(t *testing.T) {
	app := newTestApp(t, &fakeWeather{reading: sunny()}, nil)
	id := createEvent(t, app)

	code, body := do(t, app, http.MethodGet, "/api/events/"+id+"/suitability", "")
	require.Equal(t, http.StatusOK, code)
	data := body["data"].(map[string]any)
	assert.Equal(t, 100.0, data["score"])
	assert.Equal(t, "Good", data["suitability"])
	assert.Contains(t, data["analysis"], "Weather good for Wedding.")
}

func TestListAndUpdateEvent(t *testing.T) {
	app := newTestApp(t, &fakeWeather{reading: sunny()}, nil)
	id := createEvent(t, app)

	code, body := do(t, app, http.MethodPut, "/api/events/"+id, `{"name":"Renamed"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Renamed", body["data"].(map[string]any)["name"])

	code, body = do(t, app, http.MethodGet, "/api/events", "")
	require.Equal(t, http.StatusOK, code)
	list := body["data"].([]any)
	require.Len(t, list, 1)
	assert.Equal(t, "Renamed", list[0].(map[string]any)["name"])
}

func TestWeatherCheck(t *testing.T) {
	fw := &fakeWeather{reading: sunny()}
	app := newTestApp(t, fw, nil)
	id := createEvent(t, app)

	fw.reading = weather.Reading{Temperature: 5, Precipitation: 90, WindSpeed: 50, Description: "heavy intensity rain", SampledAt: eventDate}
	code, body := do(t, app, http.MethodPost, "/api/events/"+id+"/weather-check", "")
	require.Equal(t, http.StatusOK, code)
	analysis := body["data"].(map[string]any)["analysis"].(map[string]any)
	assert.Equal(t, "Poor", analysis["suitability"])
}

func TestAlternatives(t *testing.T) {
	forecast := weather.Forecast{
		{Timestamp: eventDate, Temperature: 22, PrecipitationProbability: 0.05, WindSpeed: 10, ConditionDescription: "clear sky"},
		{Timestamp: eventDate.AddDate(0, 0, 1), Temperature: 5, PrecipitationProbability: 0.9, WindSpeed: 40, ConditionDescription: "rain"},
	}
	app := newTestApp(t, &fakeWeather{reading: sunny()}, forecast)
	id := createEvent(t, app)

	code, body := do(t, app, http.MethodGet,
		"/api/events/"+id+"/alternatives?start_date=2026-06-01T12:00:00Z&end_date=2026-06-02T12:00:00Z", "")
	require.Equal(t, http.StatusOK, code)
	alts := body["data"].(map[string]any)["alternatives"].([]any)
	require.Len(t, alts, 1)
	first := alts[0].(map[string]any)
	assert.Equal(t, 100.0, first["score"])
	assert.Equal(t, "Good", first["suitability"])
	assert.NotNil(t, first["weather_data"])
	assert.NotContains(t, body["data"].(map[string]any), "message")
}

func TestAlternativesNoneSuitable(t *testing.T) {
	forecast := weather.Forecast{
		{Timestamp: eventDate, Temperature: 5, PrecipitationProbability: 0.9, WindSpeed: 40, ConditionDescription: "rain"},
	}
	app := newTestApp(t, &fakeWeather{reading: sunny()}, forecast)
	id := createEvent(t, app)

	code, body := do(t, app, http.MethodGet,
		"/api/events/"+id+"/alternatives?start_date=2026-06-01T12:00:00Z&end_date=2026-06-03T12:00:00Z", "")
	require.Equal(t, http.StatusOK, code)
	data := body["data"].(map[string]any)
	assert.Empty(t, data["alternatives"])
	assert.NotNil(t, data["alternatives"], "empty list, not null")
	assert.Equal(t, "No suitable alternative dates found for this event.", data["message"])
}

func TestAlternativesQueryValidation(t *testing.T) {
	app := newTestApp(t, &fakeWeather{reading: sunny()}, nil)
	id := createEvent(t, app)

	for _, q := range []string{
		"",
		"?start_date=2026-06-01",
		"?start_date=2026-06-05&end_date=2026-06-01",
		"?start_date=soon&end_date=2026-06-01",
		"?start_date=2026-06-01&end_date=2026-07-01",
	} {
		code, _ := do(t, app, http.MethodGet, "/api/events/"+id+"/alternatives"+q, "")
		assert.Equal(t, http.StatusBadRequest, code, q)
	}
}

func TestWeatherLookupWithSuitability(t *testing.T) {
	fw := &fakeWeather{reading: sunny()}
	app := newTestApp(t, fw, nil)

	code, body := do(t, app, http.MethodGet, "/api/weather/New%20York/2026-06-01T12:00:00Z?event_type=Wedding", "")
	require.Equal(t, http.StatusOK, code)
	data := body["data"].(map[string]any)
	assert.Equal(t, "New York", data["location"])
	assert.Equal(t, 22.0, data["weather"].(map[string]any)["temperature"])
	assert.Equal(t, "Good", data["suitability"].(map[string]any)["suitability"])
	assert.Equal(t, "New York", fw.location)

	code, body = do(t, app, http.MethodGet, "/api/weather/London/1780315200", "")
	require.Equal(t, http.StatusOK, code)
	assert.NotContains(t, body["data"].(map[string]any), "suitability")
	assert.Equal(t, eventDate, fw.date)
}

func TestWeatherLookupBadDate(t *testing.T) {
	app := newTestApp(t, &fakeWeather{reading: sunny()}, nil)

	code, _ := do(t, app, http.MethodGet, "/api/weather/London/tomorrow", "")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestCacheStatus(t *testing.T) {
	fw := &fakeWeather{status: []weather.CacheStatus{{Key: "London_2026-06-01T12:00:00Z", AgeMinutes: 12}}}
	app := newTestApp(t, fw, nil)

	code, body := do(t, app, http.MethodGet, "/api/weather/cache", "")
	require.Equal(t, http.StatusOK, code)
	data := body["data"].(map[string]any)
	assert.Equal(t, 1.0, data["count"])
	entry := data["entries"].([]any)[0].(map[string]any)
	assert.Equal(t, "London_2026-06-01T12:00:00Z", entry["key"])
	assert.Equal(t, 12.0, entry["ageMinutes"])
}

func TestIndex(t *testing.T) {
	app := newTestApp(t, &fakeWeather{}, nil)

	code, body := do(t, app, http.MethodGet, "/api", "")
	require.Equal(t, http.StatusOK, code)
	assert.NotEmpty(t, body["endpoints"])
}

func TestParseTime(t *testing.T) {
	got, err := parseTime("2026-06-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC), got)

	got, err = parseTime("2026-06-01T14:00:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, eventDate, got)

	_, err = parseTime("next week")
	assert.Error(t, err)
}
