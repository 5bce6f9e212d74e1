package httpapi

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/smart-event-planner/internal/events"
	"github.com/i474232898/smart-event-planner/internal/weather"
)

// ErrorHandler is the fiber error handler for the API. Domain errors map to
// their status codes; anything unrecognized is a 500 with a generic message.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code, msg := classify(err)
	return c.Status(code).JSON(fiber.Map{
		"status":  "error",
		"message": msg,
	})
}

func classify(err error) (int, string) {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code, fe.Message
	case errors.Is(err, weather.ErrInvalidInput):
		return fiber.StatusBadRequest, err.Error()
	case errors.Is(err, events.ErrEventNotFound):
		return fiber.StatusNotFound, events.ErrEventNotFound.Error()
	case errors.Is(err, weather.ErrLocationNotFound):
		return fiber.StatusNotFound, err.Error()
	case errors.Is(err, weather.ErrNoDataForDate):
		return fiber.StatusNotFound, weather.ErrNoDataForDate.Error()
	case errors.Is(err, weather.ErrWeatherFetchFailed):
		return fiber.StatusServiceUnavailable, weather.ErrWeatherFetchFailed.Error()
	default:
		return fiber.StatusInternalServerError, "internal server error"
	}
}

func success(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(fiber.Map{
		"status": "success",
		"data":   data,
	})
}
