package suitability

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/i474232898/smart-event-planner/internal/weather"
)

// Label is the three-tier verdict derived from a score.
type Label string

const (
	Poor Label = "Poor"
	Okay Label = "Okay"
	Good Label = "Good"
)

// Score thresholds for the labels.
const (
	GoodThreshold = 80
	OkayThreshold = 50
)

// Breakdown holds the four sub-scores of a result.
type Breakdown struct {
	Temperature   int `json:"temperature"`
	Precipitation int `json:"precipitation"`
	Wind          int `json:"wind"`
	Condition     int `json:"condition"`
}

// Total sums the sub-scores.
func (b Breakdown) Total() int {
	return b.Temperature + b.Precipitation + b.Wind + b.Condition
}

// Result is the suitability of one reading for one event type.
type Result struct {
	Score     int       `json:"score"`
	Label     Label     `json:"suitability"`
	Analysis  string    `json:"analysis"`
	Rule      string    `json:"rule"`
	Breakdown Breakdown `json:"breakdown"`
}

// LabelFor maps a score onto its label.
func LabelFor(score int) Label {
	switch {
	case score >= GoodThreshold:
		return Good
	case score >= OkayThreshold:
		return Okay
	default:
		return Poor
	}
}

// Score rates r for eventType. It is pure and never fails.
func Score(r weather.Reading, eventType string) Result {
	rule := RuleFor(eventType)
	b := Breakdown{
		Temperature:   rule.Temperature.points(r.Temperature),
		Precipitation: rule.Precipitation.points(r.Precipitation),
		Wind:          rule.Wind.points(r.WindSpeed),
		Condition:     rule.Condition.points(r.Description),
	}
	score := b.Total()
	label := LabelFor(score)

	return Result{
		Score:     score,
		Label:     label,
		Analysis:  Analysis(label, r, eventType),
		Rule:      rule.Name,
		Breakdown: b,
	}
}

// Analysis renders the human-readable summary for a reading. Numeric fields
// are always included, zero values too; the condition is omitted when empty.
func Analysis(label Label, r weather.Reading, eventType string) string {
	parts := []string{
		fmt.Sprintf("Temperature: %s°C", formatNumber(r.Temperature)),
		fmt.Sprintf("Precipitation: %s%%", formatNumber(r.Precipitation)),
		fmt.Sprintf("Wind Speed: %s km/h", formatNumber(r.WindSpeed)),
	}
	if d := strings.TrimSpace(r.Description); d != "" {
		parts = append(parts, "Conditions: "+d)
	}
	return fmt.Sprintf("Weather %s for %s. %s", strings.ToLower(string(label)), eventType, strings.Join(parts, ", "))
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
