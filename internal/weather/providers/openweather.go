package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/smart-event-planner/internal/weather"
)

// msToKph converts OpenWeatherMap's metric wind speed (m/s) to km/h.
const msToKph = 3.6

// OpenWeatherProvider implements weather.Provider for OpenWeatherMap. Place
// names are resolved through the current-weather endpoint and forecasts come
// from the 5 day / 3 hour endpoint.
type OpenWeatherProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenWeatherProvider(cfg HTTPClientConfig, apiKey string) *OpenWeatherProvider {
	return &OpenWeatherProvider{
		name:    "openweathermap",
		apiKey:  apiKey,
		baseURL: "https://api.openweathermap.org/data/2.5",
		httpCfg: cfg,
		circuit: newCircuitBreaker("openweather"),
	}
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

func (p *OpenWeatherProvider) Geocode(ctx context.Context, location string) (weather.Coordinates, error) {
	if p.apiKey == "" {
		return weather.Coordinates{}, fmt.Errorf("openweather %w", errMissingAPIKey)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, func() (*http.Request, error) {
		values := url.Values{}
		values.Set("q", location)
		values.Set("appid", p.apiKey)
		return http.NewRequest(http.MethodGet, p.baseURL+"/weather?"+values.Encode(), nil)
	})
	if err != nil {
		if isNotFound(err) {
			return weather.Coordinates{}, weather.ErrLocationNotFound
		}
		return weather.Coordinates{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		Coord *struct {
			Lat float64 `json:"lat"`
			Lon float64 `json:"lon"`
		} `json:"coord"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.Coordinates{}, fmt.Errorf("decode openweather geocode: %w", err)
	}
	if payload.Coord == nil {
		return weather.Coordinates{}, weather.ErrLocationNotFound
	}

	return weather.Coordinates{Lat: payload.Coord.Lat, Lon: payload.Coord.Lon}, nil
}

func (p *OpenWeatherProvider) Forecast(ctx context.Context, at weather.Coordinates) (weather.Forecast, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("openweather %w", errMissingAPIKey)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, func() (*http.Request, error) {
		values := url.Values{}
		values.Set("lat", fmt.Sprintf("%f", at.Lat))
		values.Set("lon", fmt.Sprintf("%f", at.Lon))
		values.Set("appid", p.apiKey)
		values.Set("units", "metric")
		return http.NewRequest(http.MethodGet, p.baseURL+"/forecast?"+values.Encode(), nil)
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload struct {
		List []struct {
			Dt   int64 `json:"dt"`
			Main struct {
				Temp     float64 `json:"temp"`
				Humidity int     `json:"humidity"`
				Pressure float64 `json:"pressure"`
			} `json:"main"`
			Wind struct {
				Speed float64 `json:"speed"`
			} `json:"wind"`
			Pop     float64 `json:"pop"`
			Weather []struct {
				Main        string `json:"main"`
				Description string `json:"description"`
				Icon        string `json:"icon"`
			} `json:"weather"`
			Clouds struct {
				All int `json:"all"`
			} `json:"clouds"`
			Visibility int `json:"visibility"`
		} `json:"list"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode openweather forecast: %w", err)
	}

	forecast := make(weather.Forecast, 0, len(payload.List))
	for _, item := range payload.List {
		s := weather.Sample{
			Timestamp:                time.Unix(item.Dt, 0).UTC(),
			Temperature:              item.Main.Temp,
			Humidity:                 item.Main.Humidity,
			WindSpeed:                kph(item.Wind.Speed),
			PrecipitationProbability: item.Pop,
			CloudCover:               item.Clouds.All,
			Pressure:                 item.Main.Pressure,
			Visibility:               item.Visibility,
		}
		if len(item.Weather) > 0 {
			s.ConditionMain = item.Weather[0].Main
			s.ConditionDescription = item.Weather[0].Description
			s.ConditionIcon = item.Weather[0].Icon
		}
		forecast = append(forecast, s)
	}

	return forecast, nil
}

// kph converts m/s to km/h rounded to 2 decimals.
func kph(ms float64) float64 {
	return math.Round(ms*msToKph*100) / 100
}
