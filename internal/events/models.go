// Package events plans events: it persists them through a Store and keeps a
// weather reading and suitability analysis attached to each one.
package events

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/smart-event-planner/internal/suitability"
	"github.com/i474232898/smart-event-planner/internal/weather"
)

// ErrEventNotFound is returned when no event exists for an id.
var ErrEventNotFound = errors.New("event not found")

// Event is a planned event with its latest weather and analysis.
type Event struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Location  string    `json:"location"`
	Date      time.Time `json:"date"`
	EventType string    `json:"event_type"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Weather  *weather.Reading `json:"weather,omitempty"`
	Analysis *Analysis        `json:"analysis,omitempty"`
}

// Analysis is the stored suitability verdict for an event. Only the score
// and text are persisted; Label is derived from Score on every read.
type Analysis struct {
	Score int               `json:"weather_score"`
	Label suitability.Label `json:"suitability"`
	Text  string            `json:"analysis_text"`
}

// NewAnalysis builds the stored form of a scoring result.
func NewAnalysis(res suitability.Result) *Analysis {
	return &Analysis{Score: res.Score, Label: res.Label, Text: res.Analysis}
}

// Store persists events together with their weather and analysis records.
type Store interface {
	// CreateEvent inserts ev and its child records.
	CreateEvent(ctx context.Context, ev Event) error
	// GetEvent returns the event with id or ErrEventNotFound.
	GetEvent(ctx context.Context, id uuid.UUID) (Event, error)
	// ListEvents returns every event ordered by date ascending.
	ListEvents(ctx context.Context) ([]Event, error)
	// UpdateEvent overwrites the event row and replaces its child records.
	UpdateEvent(ctx context.Context, ev Event) error
}

// CreateInput holds the fields of a new event. All are required.
type CreateInput struct {
	Name      string
	Location  string
	Date      time.Time
	EventType string
	Category  string
}

// UpdateInput holds a partial update. Nil or empty fields are left unchanged.
type UpdateInput struct {
	Name      *string
	Location  *string
	Date      *time.Time
	EventType *string
	Category  *string
}
