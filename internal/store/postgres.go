package store

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/i474232898/smart-event-planner/internal/events"
	"github.com/i474232898/smart-event-planner/internal/weather"
)

//go:embed schema.sql
var schema string

// DBTX is the minimal interface shared by *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore is an events.Store over the events, weather_data and
// event_weather_analysis tables. Each write is a single statement, so an
// event and its child records change together.
type PostgresStore struct {
	db DBTX
}

// NewPostgresStore creates a PostgresStore.
func NewPostgresStore(db DBTX) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the tables when they do not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Child rows are written from the event CTE and skipped when the matching
// flag is false.
const childWrites = `
w AS (
    INSERT INTO weather_data (event_id, temperature, humidity, wind_speed, precipitation,
        weather_condition, weather_icon, clouds, pressure, visibility, "timestamp")
    SELECT id, $9::double precision, $10::integer, $11::double precision, $12::double precision,
        $13::text, $14::text, $15::integer, $16::double precision, $17::integer, $18::timestamptz
    FROM e WHERE $19::boolean
    ON CONFLICT (event_id) DO UPDATE SET
        temperature = EXCLUDED.temperature,
        humidity = EXCLUDED.humidity,
        wind_speed = EXCLUDED.wind_speed,
        precipitation = EXCLUDED.precipitation,
        weather_condition = EXCLUDED.weather_condition,
        weather_icon = EXCLUDED.weather_icon,
        clouds = EXCLUDED.clouds,
        pressure = EXCLUDED.pressure,
        visibility = EXCLUDED.visibility,
        "timestamp" = EXCLUDED."timestamp"
),
a AS (
    INSERT INTO event_weather_analysis (event_id, weather_score, analysis_text)
    SELECT id, $20::integer, $21::text FROM e WHERE $22::boolean
    ON CONFLICT (event_id) DO UPDATE SET
        weather_score = EXCLUDED.weather_score,
        analysis_text = EXCLUDED.analysis_text
)
SELECT count(*) FROM e`

const insertEvent = `
WITH e AS (
    INSERT INTO events (id, name, location, date, event_type, category, created_at, updated_at)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    RETURNING id
),` + childWrites

const updateEvent = `
WITH e AS (
    UPDATE events SET name = $2, location = $3, date = $4, event_type = $5, category = $6,
        created_at = $7, updated_at = $8
    WHERE id = $1
    RETURNING id
),` + childWrites

const selectEvents = `
SELECT e.id, e.name, e.location, e.date, e.event_type, e.category, e.created_at, e.updated_at,
    w.temperature, w.humidity, w.wind_speed, w.precipitation, w.weather_condition,
    w.weather_icon, w.clouds, w.pressure, w.visibility, w."timestamp",
    a.weather_score, a.analysis_text
FROM events e
LEFT JOIN weather_data w ON w.event_id = e.id
LEFT JOIN event_weather_analysis a ON a.event_id = e.id`

// CreateEvent inserts ev with its weather and analysis records.
func (s *PostgresStore) CreateEvent(ctx context.Context, ev events.Event) error {
	var n int
	if err := s.db.QueryRow(ctx, insertEvent, writeArgs(ev)...).Scan(&n); err != nil {
		return fmt.Errorf("insert event %s: %w", ev.ID, err)
	}
	return nil
}

// UpdateEvent overwrites the event and upserts its child records.
func (s *PostgresStore) UpdateEvent(ctx context.Context, ev events.Event) error {
	var n int
	if err := s.db.QueryRow(ctx, updateEvent, writeArgs(ev)...).Scan(&n); err != nil {
		return fmt.Errorf("update event %s: %w", ev.ID, err)
	}
	if n == 0 {
		return events.ErrEventNotFound
	}
	return nil
}

// GetEvent loads one event with its child records.
func (s *PostgresStore) GetEvent(ctx context.Context, id uuid.UUID) (events.Event, error) {
	ev, err := scanEvent(s.db.QueryRow(ctx, selectEvents+" WHERE e.id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return events.Event{}, events.ErrEventNotFound
	}
	if err != nil {
		return events.Event{}, fmt.Errorf("get event %s: %w", id, err)
	}
	return ev, nil
}

// ListEvents loads all events ordered by date.
func (s *PostgresStore) ListEvents(ctx context.Context) ([]events.Event, error) {
	rows, err := s.db.Query(ctx, selectEvents+" ORDER BY e.date ASC, e.created_at ASC")
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	result := []events.Event{}
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		result = append(result, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return result, nil
}

func writeArgs(ev events.Event) []any {
	w := weather.Reading{}
	if ev.Weather != nil {
		w = *ev.Weather
	}
	a := events.Analysis{}
	if ev.Analysis != nil {
		a = *ev.Analysis
	}
	return []any{
		ev.ID, ev.Name, ev.Location, ev.Date, ev.EventType, ev.Category, ev.CreatedAt, ev.UpdatedAt,
		w.Temperature, w.Humidity, w.WindSpeed, w.Precipitation, w.Description,
		w.Icon, w.CloudCover, w.Pressure, w.Visibility, w.SampledAt, ev.Weather != nil,
		a.Score, a.Text, ev.Analysis != nil,
	}
}

// eventRow mirrors selectEvents; the joined columns are nullable.
type eventRow struct {
	ev events.Event

	temperature   *float64
	humidity      *int
	windSpeed     *float64
	precipitation *float64
	condition     *string
	icon          *string
	clouds        *int
	pressure      *float64
	visibility    *int
	sampledAt     *time.Time

	score *int
	text  *string
}

func scanEvent(row pgx.Row) (events.Event, error) {
	var r eventRow
	err := row.Scan(
		&r.ev.ID, &r.ev.Name, &r.ev.Location, &r.ev.Date, &r.ev.EventType, &r.ev.Category,
		&r.ev.CreatedAt, &r.ev.UpdatedAt,
		&r.temperature, &r.humidity, &r.windSpeed, &r.precipitation, &r.condition,
		&r.icon, &r.clouds, &r.pressure, &r.visibility, &r.sampledAt,
		&r.score, &r.text,
	)
	if err != nil {
		return events.Event{}, err
	}

	ev := r.ev
	ev.Date = ev.Date.UTC()
	if r.sampledAt != nil {
		ev.Weather = &weather.Reading{
			Temperature:   deref(r.temperature),
			Humidity:      deref(r.humidity),
			WindSpeed:     deref(r.windSpeed),
			Precipitation: deref(r.precipitation),
			Description:   deref(r.condition),
			Icon:          deref(r.icon),
			CloudCover:    deref(r.clouds),
			Pressure:      deref(r.pressure),
			Visibility:    deref(r.visibility),
			SampledAt:     r.sampledAt.UTC(),
		}
	}
	if r.score != nil {
		ev.Analysis = &events.Analysis{Score: *r.score, Text: deref(r.text)}
	}
	return ev, nil
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
