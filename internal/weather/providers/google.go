package providers

import (
	"context"
	"fmt"
	"strings"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/smart-event-planner/internal/weather"
)

// geocodeAddress is swapped in tests.
var geocodeAddress = geocoder.Geocoding

// GoogleGeocoder resolves place names with the Google Geocoding API. It can
// replace the forecast provider's own geocoding when a Google key is set.
type GoogleGeocoder struct{}

// NewGoogleGeocoder sets the package-wide Google API key used by the
// geocoder library.
func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	geocoder.ApiKey = apiKey
	return &GoogleGeocoder{}
}

// Geocode resolves location. The underlying client is not context aware, so
// a cancelled ctx is only honoured before the call starts.
func (g *GoogleGeocoder) Geocode(ctx context.Context, location string) (weather.Coordinates, error) {
	if err := ctx.Err(); err != nil {
		return weather.Coordinates{}, err
	}

	loc, err := geocodeAddress(geocoder.Address{City: location})
	if err != nil {
		if strings.Contains(err.Error(), "ZERO_RESULTS") {
			return weather.Coordinates{}, weather.ErrLocationNotFound
		}
		return weather.Coordinates{}, fmt.Errorf("google geocode: %w", err)
	}
	if loc.Latitude == 0 && loc.Longitude == 0 {
		return weather.Coordinates{}, weather.ErrLocationNotFound
	}

	return weather.Coordinates{Lat: loc.Latitude, Lon: loc.Longitude}, nil
}
