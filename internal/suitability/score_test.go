package suitability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/i474232898/smart-event-planner/internal/weather"
)

func reading(temp, precip, wind float64, desc string) weather.Reading {
	return weather.Reading{
		Temperature:   temp,
		Precipitation: precip,
		WindSpeed:     wind,
		Description:   desc,
		SampledAt:     time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestLabelFor_Boundaries(t *testing.T) {
	assert.Equal(t, Poor, LabelFor(0))
	assert.Equal(t, Poor, LabelFor(49))
	assert.Equal(t, Okay, LabelFor(50))
	assert.Equal(t, Okay, LabelFor(79))
	assert.Equal(t, Good, LabelFor(80))
	assert.Equal(t, Good, LabelFor(100))
}

func TestScore_WeddingPerfectDay(t *testing.T) {
	res := Score(reading(22, 5, 10, "clear sky"), Wedding)

	assert.Equal(t, Breakdown{Temperature: 30, Precipitation: 30, Wind: 25, Condition: 15}, res.Breakdown)
	assert.Equal(t, 100, res.Score)
	assert.Equal(t, Good, res.Label)
	assert.Equal(t, Wedding, res.Rule)
}

func TestScore_UnknownTypeUsesDefault(t *testing.T) {
	res := Score(reading(22, 5, 10, "clear sky"), "UnknownType")

	assert.Equal(t, Breakdown{Temperature: 30, Precipitation: 25, Wind: 25, Condition: 20}, res.Breakdown)
	assert.Equal(t, 100, res.Score)
	assert.Equal(t, Good, res.Label)
	assert.Equal(t, DefaultRule, res.Rule)
	assert.Equal(t, res, Score(reading(22, 5, 10, "clear sky"), "UnknownType"), "deterministic")
}

func TestScore_HikingInRain(t *testing.T) {
	res := Score(reading(5, 35, 25, "rain"), Hiking)

	// 5°C sits on the lower edge of Hiking's closed acceptable band.
	assert.Equal(t, Breakdown{Temperature: 15}, res.Breakdown)
	assert.Equal(t, 15, res.Score)
	assert.Equal(t, Poor, res.Label)

	res = Score(reading(4, 35, 25, "rain"), Hiking)
	assert.Equal(t, 0, res.Score)
	assert.Equal(t, Poor, res.Label)
}

func TestScore_SportsTolerableClouds(t *testing.T) {
	res := Score(reading(20, 10, 25, "Broken Clouds"), OutdoorSports)

	assert.Equal(t, Breakdown{Temperature: 30, Precipitation: 25, Wind: 10, Condition: 15}, res.Breakdown)
	assert.Equal(t, 80, res.Score)
	assert.Equal(t, Good, res.Label)
}

func TestScore_ExactlyFiftyIsOkay(t *testing.T) {
	res := Score(reading(25, 30, 25, "light rain"), "Board Games")
	assert.Equal(t, 50, res.Score)
	assert.Equal(t, Okay, res.Label)
}

func TestScore_BoundedAndConsistent(t *testing.T) {
	conditions := []string{"clear sky", "few clouds", "scattered clouds", "broken clouds", "overcast clouds", "rain", ""}
	types := append(KnownEventTypes(), "Unknown")

	for _, et := range types {
		rule := RuleFor(et)
		for temp := -10.0; temp <= 45; temp += 2.5 {
			for precip := 0.0; precip <= 100; precip += 5 {
				for wind := 0.0; wind <= 50; wind += 5 {
					for _, cond := range conditions {
						res := Score(reading(temp, precip, wind, cond), et)
						if res.Score < 0 || res.Score > 100 || res.Breakdown.Total() != res.Score ||
							res.Breakdown.Temperature > rule.Temperature.Full ||
							res.Breakdown.Precipitation > rule.Precipitation.Full ||
							res.Breakdown.Wind > rule.Wind.Full ||
							res.Breakdown.Condition > rule.Condition.Full ||
							res.Label != LabelFor(res.Score) {
							t.Fatalf("%s: inconsistent result %+v for temp=%v precip=%v wind=%v cond=%q",
								et, res, temp, precip, wind, cond)
						}
					}
				}
			}
		}
	}
}

func TestAnalysis(t *testing.T) {
	res := Score(reading(22, 5, 10, "clear sky"), Wedding)
	assert.Equal(t,
		"Weather good for Wedding. Temperature: 22°C, Precipitation: 5%, Wind Speed: 10 km/h, Conditions: clear sky",
		res.Analysis)
}

func TestAnalysis_ZeroValuesArePresent(t *testing.T) {
	got := Analysis(Okay, reading(0, 0, 0, ""), Picnic)
	assert.Equal(t, "Weather okay for Picnic. Temperature: 0°C, Precipitation: 0%, Wind Speed: 0 km/h", got)
}

func TestAnalysis_Decimals(t *testing.T) {
	got := Analysis(Poor, reading(-3.25, 47.5, 12.6, "snow"), "Ski Trip")
	assert.Equal(t, "Weather poor for Ski Trip. Temperature: -3.25°C, Precipitation: 47.5%, Wind Speed: 12.6 km/h, Conditions: snow", got)
}
