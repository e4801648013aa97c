package handler // handler defines http handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/hemolink/blood-bank-api/internal/repository"
	"github.com/hemolink/blood-bank-api/internal/service"
	"github.com/hemolink/blood-bank-api/internal/utils"
)

// getUserID extracts the user_id from echo.Context and converts it to uint64.
// The JWT middleware stores the raw claim, whose concrete type depends on how
// the token was decoded.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// pathID parses the named path parameter as an unsigned integer ID.
func pathID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}

// serviceError translates appointment-manager and repository errors into the
// JSON error responses the API exposes. Anything unrecognized is treated as a
// storage failure.
func serviceError(c echo.Context, err error) error {
	var elig *service.EligibilityError
	switch {
	case errors.As(err, &elig):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"error":              "not eligible to donate yet",
			"next_eligible_date": elig.NextEligible.Format(utils.DateLayout),
		})
	case errors.Is(err, service.ErrActiveAppointment):
		return c.JSON(http.StatusConflict, echo.Map{"error": "an active appointment already exists"})
	case errors.Is(err, service.ErrSlotFull):
		return c.JSON(http.StatusConflict, echo.Map{"error": "time slot is at capacity"})
	case errors.Is(err, service.ErrAlreadyCompleted):
		return c.JSON(http.StatusConflict, echo.Map{"error": "donation already completed"})
	case errors.Is(err, service.ErrInvalidTransition):
		return c.JSON(http.StatusConflict, echo.Map{"error": "invalid status transition"})
	case errors.Is(err, service.ErrNoSessionForDate):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no session scheduled for that date"})
	case errors.Is(err, service.ErrBadTimeSlot):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "preferred time is not a bookable slot"})
	case errors.Is(err, service.ErrBadCoordinates):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "coordinates outside valid range"})
	case errors.Is(err, service.ErrBadBloodType):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown blood type"})
	case errors.Is(err, utils.ErrInvalidDate):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date"})
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "conflict"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "storage failure"})
	}
}
