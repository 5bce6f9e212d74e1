package weather

import (
	"fmt"
	"math"
	"time"
)

// MatchWindow is the largest distance between a requested time and the
// forecast sample chosen for it.
const MatchWindow = 3 * time.Hour

// Nearest returns the sample closest to at. Only samples strictly within
// MatchWindow qualify; on equal distance the earlier sample wins.
func (f Forecast) Nearest(at time.Time) (Sample, error) {
	best := -1
	var bestDiff time.Duration
	for i, s := range f {
		diff := s.Timestamp.Sub(at)
		if diff < 0 {
			diff = -diff
		}
		if diff >= MatchWindow {
			continue
		}
		if best == -1 || diff < bestDiff || (diff == bestDiff && s.Timestamp.Before(f[best].Timestamp)) {
			best = i
			bestDiff = diff
		}
	}
	if best == -1 {
		return Sample{}, fmt.Errorf("%w: %s", ErrNoDataForDate, at.UTC().Format(time.RFC3339))
	}
	return f[best], nil
}

// ReadingAt selects the nearest sample and normalizes it.
func (f Forecast) ReadingAt(at time.Time) (Reading, error) {
	s, err := f.Nearest(at)
	if err != nil {
		return Reading{}, err
	}
	return Normalize(s), nil
}

// Normalize maps a provider sample onto the canonical reading. The
// timestamp is the sample's, not the requested one.
func Normalize(s Sample) Reading {
	return Reading{
		Temperature:   s.Temperature,
		Humidity:      s.Humidity,
		WindSpeed:     s.WindSpeed,
		Precipitation: math.Round(s.PrecipitationProbability*10000) / 100,
		Description:   s.ConditionDescription,
		Icon:          s.ConditionIcon,
		CloudCover:    s.CloudCover,
		Pressure:      s.Pressure,
		Visibility:    s.Visibility,
		SampledAt:     s.Timestamp.UTC(),
	}
}
