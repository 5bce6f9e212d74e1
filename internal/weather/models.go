package weather

import (
	"errors"
	"time"
)

var (
	// ErrInvalidInput is returned for a missing location or an unusable date.
	ErrInvalidInput = errors.New("invalid input")

	// ErrLocationNotFound is returned when the provider cannot resolve a place name.
	ErrLocationNotFound = errors.New("location not found")

	// ErrNoDataForDate is returned when no forecast sample lies within the acceptance window.
	ErrNoDataForDate = errors.New("no weather data available for the specified date")

	// ErrWeatherFetchFailed wraps any transport or decoding failure from the provider.
	ErrWeatherFetchFailed = errors.New("failed to fetch weather data")
)

// Coordinates is a geocoded position.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Sample is a single timestamped entry of a provider forecast, already
// converted to metric units. Wind speed is km/h and the precipitation
// probability is in [0,1].
type Sample struct {
	Timestamp                time.Time
	Temperature              float64
	Humidity                 int
	WindSpeed                float64
	PrecipitationProbability float64
	ConditionMain            string
	ConditionDescription     string
	ConditionIcon            string
	CloudCover               int
	Pressure                 float64
	Visibility               int
}

// Forecast is a provider forecast list, ordered by Timestamp ascending.
type Forecast []Sample

// Reading is the canonical weather snapshot used for scoring.
type Reading struct {
	Temperature   float64   `json:"temperature"`
	Humidity      int       `json:"humidity"`
	WindSpeed     float64   `json:"wind_speed"`
	Precipitation float64   `json:"precipitation"`
	Description   string    `json:"weather_description"`
	Icon          string    `json:"weather_icon"`
	CloudCover    int       `json:"clouds"`
	Pressure      float64   `json:"pressure"`
	Visibility    int       `json:"visibility"`
	SampledAt     time.Time `json:"timestamp"` // always UTC
}
