package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/smart-event-planner/internal/events"
	"github.com/i474232898/smart-event-planner/internal/suitability"
	"github.com/i474232898/smart-event-planner/internal/weather"
)

var validate = validator.New()

const noAlternativesMessage = "No suitable alternative dates found for this event."

// EventService is the event planning surface used by the handlers.
type EventService interface {
	Create(ctx context.Context, in events.CreateInput) (events.Event, error)
	List(ctx context.Context) ([]events.Event, error)
	Get(ctx context.Context, id string) (events.Event, error)
	Update(ctx context.Context, id string, in events.UpdateInput) (events.Event, error)
	CheckWeather(ctx context.Context, id string) (events.Event, error)
	Alternatives(ctx context.Context, id string, start, end time.Time) ([]suitability.Candidate, error)
}

// WeatherService is the weather lookup surface used by the handlers.
type WeatherService interface {
	FetchReading(ctx context.Context, location string, date time.Time) (weather.Reading, error)
	CacheStatus() []weather.CacheStatus
}

// Scorer rates a reading for an event type.
type Scorer interface {
	Score(r weather.Reading, eventType string) suitability.Result
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, evs EventService, ws WeatherService, scorer Scorer) {
	api := app.Group("/api")

	api.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"name": "smart-event-planner",
			"endpoints": []string{
				"POST /api/events",
				"GET /api/events",
				"GET /api/events/:id",
				"PUT /api/events/:id",
				"GET /api/events/:id/suitability",
				"GET /api/events/:id/alternatives?start_date=&end_date=",
				"POST /api/events/:id/weather-check",
				"GET /api/weather/:location/:date?event_type=",
				"GET /api/weather/cache",
			},
		})
	})

	ev := api.Group("/events")

	ev.Post("/", func(c *fiber.Ctx) error {
		var req createEventRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		in, err := req.toInput()
		if err != nil {
			return err
		}

		created, err := evs.Create(c.UserContext(), in)
		if err != nil {
			return err
		}
		return success(c, fiber.StatusCreated, created)
	})

	ev.Get("/", func(c *fiber.Ctx) error {
		all, err := evs.List(c.UserContext())
		if err != nil {
			return err
		}
		return success(c, fiber.StatusOK, all)
	})

	ev.Get("/:id", func(c *fiber.Ctx) error {
		found, err := evs.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return err
		}
		return success(c, fiber.StatusOK, found)
	})

	ev.Put("/:id", func(c *fiber.Ctx) error {
		var req updateEventRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		in, err := req.toInput()
		if err != nil {
			return err
		}

		updated, err := evs.Update(c.UserContext(), c.Params("id"), in)
		if err != nil {
			return err
		}
		return success(c, fiber.StatusOK, updated)
	})

	ev.Get("/:id/suitability", func(c *fiber.Ctx) error {
		found, err := evs.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return err
		}
		return success(c, fiber.StatusOK, suitabilityView(found))
	})

	ev.Get("/:id/alternatives", func(c *fiber.Ctx) error {
		var q alternativesQuery
		if err := q.bind(c); err != nil {
			return err
		}

		alts, err := evs.Alternatives(c.UserContext(), c.Params("id"), q.Start, q.End)
		if err != nil {
			return err
		}
		out := fiber.Map{
			"start_date":   q.Start,
			"end_date":     q.End,
			"alternatives": alts,
		}
		if len(alts) == 0 {
			out["message"] = noAlternativesMessage
		}
		return success(c, fiber.StatusOK, out)
	})

	ev.Post("/:id/weather-check", func(c *fiber.Ctx) error {
		checked, err := evs.CheckWeather(c.UserContext(), c.Params("id"))
		if err != nil {
			return err
		}
		return success(c, fiber.StatusOK, checked)
	})

	wx := api.Group("/weather")

	wx.Get("/cache", func(c *fiber.Ctx) error {
		entries := ws.CacheStatus()
		return success(c, fiber.StatusOK, fiber.Map{
			"entries": entries,
			"count":   len(entries),
		})
	})

	wx.Get("/:location/:date", func(c *fiber.Ctx) error {
		location, err := url.PathUnescape(c.Params("location"))
		if err != nil || strings.TrimSpace(location) == "" {
			return fiber.NewError(fiber.StatusBadRequest, "invalid location")
		}
		date, err := parseTime(c.Params("date"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		r, err := ws.FetchReading(c.UserContext(), location, date)
		if err != nil {
			return err
		}

		out := fiber.Map{
			"location": location,
			"date":     date,
			"weather":  r,
		}
		if et := strings.TrimSpace(c.Query("event_type")); et != "" {
			out["suitability"] = scorer.Score(r, et)
		}
		return success(c, fiber.StatusOK, out)
	})
}

// createEventRequest is the body of POST /api/events.
type createEventRequest struct {
	Name      string `json:"name" validate:"required,max=255"`
	Location  string `json:"location" validate:"required,max=255"`
	Date      string `json:"date" validate:"required"`
	EventType string `json:"event_type" validate:"required,max=100"`
	Category  string `json:"category" validate:"required,max=100"`
}

func (r createEventRequest) toInput() (events.CreateInput, error) {
	if err := validate.Struct(r); err != nil {
		return events.CreateInput{}, validationError(err)
	}
	date, err := parseTime(r.Date)
	if err != nil {
		return events.CreateInput{}, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return events.CreateInput{
		Name:      r.Name,
		Location:  r.Location,
		Date:      date,
		EventType: r.EventType,
		Category:  r.Category,
	}, nil
}

// updateEventRequest is the body of PUT /api/events/:id. Absent fields are
// left unchanged.
type updateEventRequest struct {
	Name      *string `json:"name" validate:"omitempty,max=255"`
	Location  *string `json:"location" validate:"omitempty,max=255"`
	Date      *string `json:"date"`
	EventType *string `json:"event_type" validate:"omitempty,max=100"`
	Category  *string `json:"category" validate:"omitempty,max=100"`
}

func (r updateEventRequest) toInput() (events.UpdateInput, error) {
	if err := validate.Struct(r); err != nil {
		return events.UpdateInput{}, validationError(err)
	}
	in := events.UpdateInput{
		Name:      r.Name,
		Location:  r.Location,
		EventType: r.EventType,
		Category:  r.Category,
	}
	if r.Date != nil && strings.TrimSpace(*r.Date) != "" {
		date, err := parseTime(*r.Date)
		if err != nil {
			return events.UpdateInput{}, fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		in.Date = &date
	}
	return in, nil
}

// alternativesQuery holds the query parameters of the alternatives endpoint.
type alternativesQuery struct {
	Start time.Time `validate:"required"`
	End   time.Time `validate:"required,gtefield=Start"`
}

func (q *alternativesQuery) bind(c *fiber.Ctx) error {
	startStr := c.Query("start_date")
	endStr := c.Query("end_date")
	if startStr == "" || endStr == "" {
		return fiber.NewError(fiber.StatusBadRequest, "start_date and end_date query parameters are required")
	}

	start, err := parseTime(startStr)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	end, err := parseTime(endStr)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	q.Start = start
	q.End = end

	if err := validate.Struct(q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "end_date must not be before start_date")
	}
	return nil
}

// suitabilityView is the body of GET /api/events/:id/suitability.
func suitabilityView(ev events.Event) fiber.Map {
	out := fiber.Map{
		"event":   ev,
		"weather": ev.Weather,
	}
	if ev.Analysis != nil {
		out["score"] = ev.Analysis.Score
		out["suitability"] = ev.Analysis.Label
		out["analysis"] = ev.Analysis.Text
	}
	return out
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("field %s failed %q validation", fe.Field(), fe.Tag()))
	}
	return fiber.NewError(fiber.StatusBadRequest, err.Error())
}

// parseTime accepts RFC3339, a plain YYYY-MM-DD date (midnight UTC), or Unix seconds.
func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts.UTC(), nil
	}
	if ts, err := time.Parse(time.DateOnly, s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339, YYYY-MM-DD or unix seconds")
}
