package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/smart-event-planner/internal/common"
	"github.com/i474232898/smart-event-planner/internal/weather"
)

// WeatherAPIProvider implements weather.Provider for WeatherAPI.com.
type WeatherAPIProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewWeatherAPIProvider(cfg HTTPClientConfig, apiKey string) *WeatherAPIProvider {
	return &WeatherAPIProvider{
		name:    "weatherapi",
		apiKey:  apiKey,
		baseURL: "https://api.weatherapi.com/v1",
		httpCfg: cfg,
		circuit: newCircuitBreaker("weatherapi"),
	}
}

func (p *WeatherAPIProvider) Name() string {
	return p.name
}

func (p *WeatherAPIProvider) Geocode(ctx context.Context, location string) (weather.Coordinates, error) {
	if p.apiKey == "" {
		return weather.Coordinates{}, fmt.Errorf("weatherapi %w", errMissingAPIKey)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, func() (*http.Request, error) {
		values := url.Values{}
		values.Set("key", p.apiKey)
		values.Set("q", location)
		return http.NewRequest(http.MethodGet, p.baseURL+"/search.json?"+values.Encode(), nil)
	})
	if err != nil {
		if isNotFound(err) {
			return weather.Coordinates{}, weather.ErrLocationNotFound
		}
		return weather.Coordinates{}, err
	}
	defer resp.Body.Close()

	var payload []struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.Coordinates{}, fmt.Errorf("decode weatherapi search: %w", err)
	}
	if len(payload) == 0 {
		return weather.Coordinates{}, weather.ErrLocationNotFound
	}

	return weather.Coordinates{Lat: payload[0].Lat, Lon: payload[0].Lon}, nil
}

func (p *WeatherAPIProvider) Forecast(ctx context.Context, at weather.Coordinates) (weather.Forecast, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("weatherapi %w", errMissingAPIKey)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, func() (*http.Request, error) {
		values := url.Values{}
		values.Set("key", p.apiKey)
		// WeatherAPI uses "q" for location; it accepts "lat,lon".
		values.Set("q", fmt.Sprintf("%f,%f", at.Lat, at.Lon))
		values.Set("days", "3")
		return http.NewRequest(http.MethodGet, p.baseURL+"/forecast.json?"+values.Encode(), nil)
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload struct {
		Forecast struct {
			ForecastDay []struct {
				Hour []struct {
					TimeEpoch    int64   `json:"time_epoch"`
					TempC        float64 `json:"temp_c"`
					Humidity     int     `json:"humidity"`
					WindKph      float64 `json:"wind_kph"`
					ChanceOfRain float64 `json:"chance_of_rain"`
					Cloud        int     `json:"cloud"`
					PressureMb   float64 `json:"pressure_mb"`
					VisKm        float64 `json:"vis_km"`
					Condition    struct {
						Text string `json:"text"`
						Icon string `json:"icon"`
					} `json:"condition"`
				} `json:"hour"`
			} `json:"forecastday"`
		} `json:"forecast"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode weatherapi forecast: %w", err)
	}

	var forecast weather.Forecast
	for _, day := range payload.Forecast.ForecastDay {
		for _, h := range day.Hour {
			main, desc := mapWeatherAPICondition(h.Condition.Text)
			forecast = append(forecast, weather.Sample{
				Timestamp:                time.Unix(h.TimeEpoch, 0).UTC(),
				Temperature:              h.TempC,
				Humidity:                 h.Humidity,
				WindSpeed:                h.WindKph,
				PrecipitationProbability: h.ChanceOfRain / 100,
				ConditionMain:            main,
				ConditionDescription:     desc,
				ConditionIcon:            h.Condition.Icon,
				CloudCover:               h.Cloud,
				Pressure:                 h.PressureMb,
				Visibility:               int(h.VisKm * 1000),
			})
		}
	}

	return forecast, nil
}

// mapWeatherAPICondition translates WeatherAPI condition text into the
// OpenWeatherMap vocabulary used for scoring.
func mapWeatherAPICondition(text string) (main, description string) {
	switch {
	case text == "":
		return "Unknown", "unknown"
	case common.HasAny(text, "thunder", "storm"):
		return "Thunderstorm", "thunderstorm"
	case common.HasAny(text, "snow", "sleet", "blizzard", "ice pellets"):
		return "Snow", "snow"
	case common.HasAny(text, "drizzle"):
		return "Drizzle", "drizzle"
	case common.HasAny(text, "shower"):
		return "Rain", "shower rain"
	case common.HasAny(text, "rain"):
		return "Rain", "rain"
	case common.HasAny(text, "fog", "mist"):
		return "Fog", "fog"
	case common.HasAny(text, "overcast"):
		return "Clouds", "overcast clouds"
	case common.HasAny(text, "partly"):
		return "Clouds", "scattered clouds"
	case common.HasAny(text, "cloud"):
		return "Clouds", "broken clouds"
	case common.HasAny(text, "sunny", "clear"):
		return "Clear", "clear sky"
	default:
		return "Unknown", strings.ToLower(strings.TrimSpace(text))
	}
}
