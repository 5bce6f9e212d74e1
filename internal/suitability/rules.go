// Package suitability scores how well a weather reading fits an event type
// and searches a forecast for better-scoring alternative dates.
package suitability

import "strings"

// Known event types. Any other value is scored with the default rule.
const (
	OutdoorSports  = "Outdoor Sports"
	Wedding        = "Wedding"
	Hiking         = "Hiking"
	BeachDay       = "Beach Day"
	Picnic         = "Picnic"
	Camping        = "Camping"
	OutdoorConcert = "Outdoor Concert"
	Party          = "Party"
	DefaultRule    = "Default"
)

// Band is a closed temperature interval in °C.
type Band struct {
	Min float64
	Max float64
}

func (b Band) contains(v float64) bool {
	return v >= b.Min && v <= b.Max
}

// TempCriterion awards Full points inside Ideal and Partial inside Acceptable.
type TempCriterion struct {
	Ideal      Band
	Acceptable Band
	Full       int
	Partial    int
}

func (c TempCriterion) points(v float64) int {
	switch {
	case c.Ideal.contains(v):
		return c.Full
	case c.Acceptable.contains(v):
		return c.Partial
	default:
		return 0
	}
}

// Ceiling awards Full points strictly below Low and Partial strictly below High.
type Ceiling struct {
	Low     float64
	High    float64
	Full    int
	Partial int
}

func (c Ceiling) points(v float64) int {
	switch {
	case v < c.Low:
		return c.Full
	case v < c.High:
		return c.Partial
	default:
		return 0
	}
}

// ConditionCriterion awards Full points for a favorable description and
// Partial points for a tolerable one.
type ConditionCriterion struct {
	Favorable []string
	Tolerable []string
	Full      int
	Partial   int
}

func (c ConditionCriterion) points(description string) int {
	d := strings.ToLower(strings.TrimSpace(description))
	for _, f := range c.Favorable {
		if d == f {
			return c.Full
		}
	}
	for _, f := range c.Tolerable {
		if d == f {
			return c.Partial
		}
	}
	return 0
}

// Rule is the scoring data of one event type. The four Full allocations of
// every rule sum to 100.
type Rule struct {
	Name          string
	Temperature   TempCriterion
	Precipitation Ceiling
	Wind          Ceiling
	Condition     ConditionCriterion
}

// MaxScore returns the sum of the rule's full allocations.
func (r Rule) MaxScore() int {
	return r.Temperature.Full + r.Precipitation.Full + r.Wind.Full + r.Condition.Full
}

var (
	clearOrFew     = []string{"clear sky", "few clouds"}
	clearToScatter = []string{"clear sky", "few clouds", "scattered clouds"}
	heavyClouds    = []string{"broken clouds", "overcast clouds"}
)

// standardRule builds the 30/30/25/15 allocation shared by most event types.
func standardRule(name string, ideal, acceptable Band, windLow, windHigh float64) Rule {
	return Rule{
		Name:          name,
		Temperature:   TempCriterion{Ideal: ideal, Acceptable: acceptable, Full: 30, Partial: 15},
		Precipitation: Ceiling{Low: 10, High: 20, Full: 30, Partial: 15},
		Wind:          Ceiling{Low: windLow, High: windHigh, Full: 25, Partial: 10},
		Condition:     ConditionCriterion{Favorable: clearOrFew, Full: 15},
	}
}

var rules = map[string]Rule{
	strings.ToLower(OutdoorSports): {
		Name:          OutdoorSports,
		Temperature:   TempCriterion{Ideal: Band{15, 30}, Acceptable: Band{10, 35}, Full: 30, Partial: 15},
		Precipitation: Ceiling{Low: 20, High: 40, Full: 25, Partial: 10},
		Wind:          Ceiling{Low: 20, High: 30, Full: 20, Partial: 10},
		Condition:     ConditionCriterion{Favorable: clearToScatter, Tolerable: heavyClouds, Full: 25, Partial: 15},
	},
	strings.ToLower(Wedding):        standardRule(Wedding, Band{18, 28}, Band{15, 32}, 15, 25),
	strings.ToLower(Hiking):         standardRule(Hiking, Band{10, 25}, Band{5, 30}, 15, 25),
	strings.ToLower(BeachDay):       standardRule(BeachDay, Band{25, 35}, Band{20, 38}, 20, 30),
	strings.ToLower(Picnic):         standardRule(Picnic, Band{20, 30}, Band{15, 35}, 15, 25),
	strings.ToLower(Camping):        standardRule(Camping, Band{15, 25}, Band{10, 30}, 15, 25),
	strings.ToLower(OutdoorConcert): standardRule(OutdoorConcert, Band{20, 30}, Band{15, 35}, 20, 30),
	strings.ToLower(Party):          standardRule(Party, Band{20, 30}, Band{15, 35}, 20, 30),
}

var defaultRule = Rule{
	Name:          DefaultRule,
	Temperature:   TempCriterion{Ideal: Band{20, 30}, Acceptable: Band{15, 35}, Full: 30, Partial: 15},
	Precipitation: Ceiling{Low: 20, High: 40, Full: 25, Partial: 10},
	Wind:          Ceiling{Low: 20, High: 30, Full: 25, Partial: 10},
	Condition:     ConditionCriterion{Favorable: clearOrFew, Full: 20},
}

// RuleFor returns the rule for eventType, matched case-insensitively. Unknown
// types get the default rule.
func RuleFor(eventType string) Rule {
	if r, ok := rules[strings.ToLower(strings.TrimSpace(eventType))]; ok {
		return r
	}
	return defaultRule
}

// KnownEventTypes lists the event types with a dedicated rule.
func KnownEventTypes() []string {
	return []string{OutdoorSports, Wedding, Hiking, BeachDay, Picnic, Camping, OutdoorConcert, Party}
}
