package events

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/i474232898/smart-event-planner/internal/suitability"
	"github.com/i474232898/smart-event-planner/internal/weather"
)

// DefaultMaxAlternativeDays bounds the length of an alternatives window.
const DefaultMaxAlternativeDays = 31

// WeatherLookup resolves the reading for a location at a date.
type WeatherLookup interface {
	FetchReading(ctx context.Context, location string, date time.Time) (weather.Reading, error)
}

// Scorer rates readings and searches for alternative dates.
type Scorer interface {
	Score(r weather.Reading, eventType string) suitability.Result
	SearchAlternatives(ctx context.Context, location string, start, end time.Time, eventType string) ([]suitability.Candidate, error)
}

// Service implements event planning on top of a Store.
type Service struct {
	store   Store
	lookup  WeatherLookup
	scorer  Scorer
	clock   clockwork.Clock
	logger  *slog.Logger
	maxDays int
}

// NewService wires a Service. A nil clock or logger falls back to the real
// clock and slog.Default; maxDays <= 0 uses DefaultMaxAlternativeDays.
func NewService(store Store, lookup WeatherLookup, scorer Scorer, clock clockwork.Clock, logger *slog.Logger, maxDays int) *Service {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if maxDays <= 0 {
		maxDays = DefaultMaxAlternativeDays
	}
	return &Service{
		store:   store,
		lookup:  lookup,
		scorer:  scorer,
		clock:   clock,
		logger:  logger,
		maxDays: maxDays,
	}
}

// Create validates in, fetches and scores the weather for it, and only then
// persists the event with its child records.
func (s *Service) Create(ctx context.Context, in CreateInput) (Event, error) {
	ev := Event{
		Name:      strings.TrimSpace(in.Name),
		Location:  strings.TrimSpace(in.Location),
		Date:      in.Date.UTC(),
		EventType: strings.TrimSpace(in.EventType),
		Category:  strings.TrimSpace(in.Category),
	}
	if ev.Name == "" || ev.Location == "" || ev.EventType == "" || ev.Category == "" || in.Date.IsZero() {
		return Event{}, fmt.Errorf("%w: name, location, date, event_type and category are required", weather.ErrInvalidInput)
	}

	if err := s.assess(ctx, &ev); err != nil {
		return Event{}, err
	}

	now := s.clock.Now().UTC()
	ev.ID = uuid.New()
	ev.CreatedAt = now
	ev.UpdatedAt = now

	if err := s.store.CreateEvent(ctx, ev); err != nil {
		s.logger.Error("create event failed", "event_id", ev.ID, "error", err)
		return Event{}, fmt.Errorf("create event: %w", err)
	}
	s.logger.Info("event created", "event_id", ev.ID, "location", ev.Location, "score", ev.Analysis.Score)
	return ev, nil
}

// List returns every event ordered by date.
func (s *Service) List(ctx context.Context) ([]Event, error) {
	evs, err := s.store.ListEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	for i := range evs {
		relabel(&evs[i])
	}
	return evs, nil
}

// Get returns the event with id and its latest analysis.
func (s *Service) Get(ctx context.Context, id string) (Event, error) {
	uid, err := parseID(id)
	if err != nil {
		return Event{}, err
	}
	ev, err := s.store.GetEvent(ctx, uid)
	if err != nil {
		return Event{}, err
	}
	relabel(&ev)
	return ev, nil
}

// Update applies the non-empty fields of in. A change of location, date or
// event type refetches the weather and rescores the event.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Event, error) {
	ev, err := s.Get(ctx, id)
	if err != nil {
		return Event{}, err
	}

	rescore := false
	if v := trimmed(in.Name); v != "" {
		ev.Name = v
	}
	if v := trimmed(in.Category); v != "" {
		ev.Category = v
	}
	if v := trimmed(in.Location); v != "" && v != ev.Location {
		ev.Location = v
		rescore = true
	}
	if v := trimmed(in.EventType); v != "" && v != ev.EventType {
		ev.EventType = v
		rescore = true
	}
	if in.Date != nil && !in.Date.IsZero() && !in.Date.Equal(ev.Date) {
		ev.Date = in.Date.UTC()
		rescore = true
	}

	if rescore || ev.Analysis == nil {
		if err := s.assess(ctx, &ev); err != nil {
			return Event{}, err
		}
	}
	return s.save(ctx, ev)
}

// CheckWeather refetches the weather for an event and overwrites its
// weather and analysis records.
func (s *Service) CheckWeather(ctx context.Context, id string) (Event, error) {
	ev, err := s.Get(ctx, id)
	if err != nil {
		return Event{}, err
	}
	if err := s.assess(ctx, &ev); err != nil {
		return Event{}, err
	}
	return s.save(ctx, ev)
}

// Alternatives ranks the days in [start, end] that suit the event at least
// as Okay. The window may span at most the configured number of days.
func (s *Service) Alternatives(ctx context.Context, id string, start, end time.Time) ([]suitability.Candidate, error) {
	if start.IsZero() || end.IsZero() {
		return nil, fmt.Errorf("%w: start_date and end_date are required", weather.ErrInvalidInput)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end_date is before start_date", weather.ErrInvalidInput)
	}
	if days := int(end.Sub(start).Hours()/24) + 1; days > s.maxDays {
		return nil, fmt.Errorf("%w: window of %d days exceeds %d", weather.ErrInvalidInput, days, s.maxDays)
	}

	ev, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.scorer.SearchAlternatives(ctx, ev.Location, start.UTC(), end.UTC(), ev.EventType)
}

func (s *Service) assess(ctx context.Context, ev *Event) error {
	r, err := s.lookup.FetchReading(ctx, ev.Location, ev.Date)
	if err != nil {
		return err
	}
	res := s.scorer.Score(r, ev.EventType)
	ev.Weather = &r
	ev.Analysis = NewAnalysis(res)
	return nil
}

func (s *Service) save(ctx context.Context, ev Event) (Event, error) {
	ev.UpdatedAt = s.clock.Now().UTC()
	if err := s.store.UpdateEvent(ctx, ev); err != nil {
		s.logger.Error("update event failed", "event_id", ev.ID, "error", err)
		return Event{}, fmt.Errorf("update event: %w", err)
	}
	return ev, nil
}

func relabel(ev *Event) {
	if ev.Analysis != nil {
		ev.Analysis.Label = suitability.LabelFor(ev.Analysis.Score)
	}
}

func parseID(id string) (uuid.UUID, error) {
	uid, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q", ErrEventNotFound, id)
	}
	return uid, nil
}

func trimmed(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}
