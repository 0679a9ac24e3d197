package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/playzone/reservation-service/internal/service"
	"github.com/playzone/reservation-service/internal/timeslot"
)

// ErrorHandler maps the engine's error taxonomy onto HTTP statuses. Typed
// errors never cross the boundary as 500s.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := err.Error()

	var (
		validationErr *service.ValidationError
		hoursErr      *timeslot.OutsideOperatingHoursError
		conflictErr   *service.ConflictError
		transitionErr *service.InvalidTransitionError
	)
	switch {
	case errors.As(err, &validationErr), errors.Is(err, timeslot.ErrMalformedTime):
		code = http.StatusBadRequest
	case errors.As(err, &hoursErr):
		code = http.StatusBadRequest
	case errors.As(err, &conflictErr):
		code = http.StatusConflict
	case errors.As(err, &transitionErr):
		code = http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrZoneNotFound), errors.Is(err, service.ErrReservationNotFound):
		code = http.StatusNotFound
	}

	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		}
	}

	_ = c.JSON(code, map[string]string{"message": msg})
}
