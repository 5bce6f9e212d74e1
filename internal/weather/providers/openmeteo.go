package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/smart-event-planner/internal/weather"
)

const openMeteoHourly = "temperature_2m,relative_humidity_2m,wind_speed_10m,precipitation_probability," +
	"weather_code,cloud_cover,pressure_msl,visibility"

// OpenMeteoProvider implements weather.Provider for Open-Meteo. It needs no
// API key; place names go through the Open-Meteo geocoding API.
type OpenMeteoProvider struct {
	name       string
	baseURL    string
	geocodeURL string
	httpCfg    HTTPClientConfig
	circuit    *gobreaker.CircuitBreaker
}

func NewOpenMeteoProvider(cfg HTTPClientConfig) *OpenMeteoProvider {
	return &OpenMeteoProvider{
		name:       "openmeteo",
		baseURL:    "https://api.open-meteo.com/v1/forecast",
		geocodeURL: "https://geocoding-api.open-meteo.com/v1/search",
		httpCfg:    cfg,
		circuit:    newCircuitBreaker("openmeteo"),
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

func (p *OpenMeteoProvider) Geocode(ctx context.Context, location string) (weather.Coordinates, error) {
	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, func() (*http.Request, error) {
		values := url.Values{}
		values.Set("name", location)
		values.Set("count", "1")
		return http.NewRequest(http.MethodGet, p.geocodeURL+"?"+values.Encode(), nil)
	})
	if err != nil {
		if isNotFound(err) {
			return weather.Coordinates{}, weather.ErrLocationNotFound
		}
		return weather.Coordinates{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		Results []struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.Coordinates{}, fmt.Errorf("decode openmeteo geocode: %w", err)
	}
	if len(payload.Results) == 0 {
		return weather.Coordinates{}, weather.ErrLocationNotFound
	}

	return weather.Coordinates{Lat: payload.Results[0].Latitude, Lon: payload.Results[0].Longitude}, nil
}

func (p *OpenMeteoProvider) Forecast(ctx context.Context, at weather.Coordinates) (weather.Forecast, error) {
	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", fmt.Sprintf("%f", at.Lat))
		values.Set("longitude", fmt.Sprintf("%f", at.Lon))
		values.Set("hourly", openMeteoHourly)
		values.Set("forecast_days", "7")
		values.Set("timeformat", "unixtime")
		values.Set("timezone", "UTC")
		return http.NewRequest(http.MethodGet, p.baseURL+"?"+values.Encode(), nil)
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload struct {
		Hourly struct {
			Time                     []int64   `json:"time"`
			Temperature              []float64 `json:"temperature_2m"`
			Humidity                 []float64 `json:"relative_humidity_2m"`
			WindSpeed                []float64 `json:"wind_speed_10m"`
			PrecipitationProbability []float64 `json:"precipitation_probability"`
			WeatherCode              []int     `json:"weather_code"`
			CloudCover               []float64 `json:"cloud_cover"`
			Pressure                 []float64 `json:"pressure_msl"`
			Visibility               []float64 `json:"visibility"`
		} `json:"hourly"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode openmeteo forecast: %w", err)
	}

	h := payload.Hourly
	forecast := make(weather.Forecast, 0, len(h.Time))
	for i, ts := range h.Time {
		main, desc, icon := mapOpenMeteoCondition(at0(h.WeatherCode, i))
		forecast = append(forecast, weather.Sample{
			Timestamp:                time.Unix(ts, 0).UTC(),
			Temperature:              at0(h.Temperature, i),
			Humidity:                 int(at0(h.Humidity, i)),
			WindSpeed:                at0(h.WindSpeed, i),
			PrecipitationProbability: at0(h.PrecipitationProbability, i) / 100,
			ConditionMain:            main,
			ConditionDescription:     desc,
			ConditionIcon:            icon,
			CloudCover:               int(at0(h.CloudCover, i)),
			Pressure:                 at0(h.Pressure, i),
			Visibility:               int(at0(h.Visibility, i)),
		})
	}

	return forecast, nil
}

// at0 returns s[i], or the zero value when the series is shorter than the time axis.
func at0[T any](s []T, i int) T {
	var zero T
	if i < len(s) {
		return s[i]
	}
	return zero
}

// mapOpenMeteoCondition translates WMO weather codes into the OpenWeatherMap
// vocabulary used for scoring.
func mapOpenMeteoCondition(code int) (main, description, icon string) {
	switch {
	case code == 0:
		return "Clear", "clear sky", "01d"
	case code == 1:
		return "Clouds", "few clouds", "02d"
	case code == 2:
		return "Clouds", "scattered clouds", "03d"
	case code == 3:
		return "Clouds", "overcast clouds", "04d"
	case code == 45 || code == 48:
		return "Fog", "fog", "50d"
	case code >= 51 && code <= 57:
		return "Drizzle", "drizzle", "09d"
	case code >= 61 && code <= 67:
		return "Rain", "rain", "10d"
	case code >= 71 && code <= 77, code == 85 || code == 86:
		return "Snow", "snow", "13d"
	case code >= 80 && code <= 82:
		return "Rain", "shower rain", "09d"
	case code >= 95:
		return "Thunderstorm", "thunderstorm", "11d"
	default:
		return "Unknown", "unknown", ""
	}
}
