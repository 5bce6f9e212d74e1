package weather

import (
	"context"
)

// Geocoder resolves a free-text place name to coordinates. Implementations
// return ErrLocationNotFound when nothing matches.
type Geocoder interface {
	Geocode(ctx context.Context, location string) (Coordinates, error)
}

// Forecaster returns the multi-day forecast list for a position.
type Forecaster interface {
	Forecast(ctx context.Context, at Coordinates) (Forecast, error)
}

// Provider abstracts a weather data source (e.g. OpenWeatherMap, WeatherAPI, Open-Meteo).
type Provider interface {
	Name() string
	Geocoder
	Forecaster
}
