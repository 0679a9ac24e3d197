package service

import (
	"errors"
	"fmt"

	"github.com/playzone/reservation-service/internal/models"
)

var (
	ErrZoneNotFound        = errors.New("zone not found")
	ErrReservationNotFound = errors.New("reservation not found")
)

// ValidationError reports malformed input on a single field. The caller can
// fix the input and retry.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// ConflictError means the requested slot is already held by an active
// reservation. It carries both intervals so callers can suggest
// alternatives.
type ConflictError struct {
	ZoneID              uint
	Date                string
	Requested           string
	ConflictingID       uint
	ConflictingRef      string
	ConflictingInterval string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("requested %s on %s conflicts with reservation %s (%s)",
		e.Requested, e.Date, e.ConflictingRef, e.ConflictingInterval)
}

// InvalidTransitionError reports a lifecycle event attempted from a status
// that does not allow it, or whose guard failed. The reservation is left
// untouched.
type InvalidTransitionError struct {
	From   models.ReservationStatus
	Event  string
	Reason string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot apply %s from status %s: %s", e.Event, e.From, e.Reason)
}
