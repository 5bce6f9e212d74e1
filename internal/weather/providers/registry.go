package providers

import (
	"fmt"

	"github.com/i474232898/smart-event-planner/internal/weather"
)

// Provider names accepted by New.
const (
	OpenWeather = "openweather"
	OpenMeteo   = "openmeteo"
	WeatherAPI  = "weatherapi"
)

// Keys holds the API keys of the supported providers.
type Keys struct {
	OpenWeather string
	WeatherAPI  string
}

// New returns the provider registered under name.
func New(name string, cfg HTTPClientConfig, keys Keys) (weather.Provider, error) {
	switch name {
	case OpenWeather:
		return NewOpenWeatherProvider(cfg, keys.OpenWeather), nil
	case OpenMeteo:
		return NewOpenMeteoProvider(cfg), nil
	case WeatherAPI:
		return NewWeatherAPIProvider(cfg, keys.WeatherAPI), nil
	default:
		return nil, fmt.Errorf("unknown weather provider %q", name)
	}
}
