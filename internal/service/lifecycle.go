package service

import (
	"time"

	"github.com/playzone/reservation-service/internal/models"
)

// Lifecycle events. Every status change in the engine is one of these and
// goes through checkTransition; nothing writes a status directly.
const (
	EventPaymentSucceeded = "PaymentSucceeded"
	EventPaymentFailed    = "PaymentFailed"
	EventDeadlineExceeded = "DeadlineExceeded"
	EventVendorConfirm    = "VendorConfirm"
	EventVendorDecline    = "VendorDecline"
	EventUserCancel       = "UserCancel"
	EventMarkCompleted    = "MarkCompleted"
)

// transitionTarget maps (from, event) to the resulting status. Guards that
// need runtime data (deadlines, cancellation window, vendor status config)
// are checked by the callers before the conditional write; this table is the
// static shape of the machine.
var transitionTarget = map[models.ReservationStatus]map[string]models.ReservationStatus{
	models.StatusPendingPayment: {
		EventPaymentSucceeded: models.StatusConfirmed,
		EventPaymentFailed:    models.StatusPaymentFailed,
		EventDeadlineExceeded: models.StatusPaymentFailed,
		EventVendorConfirm:    models.StatusConfirmed,
		EventVendorDecline:    models.StatusDeclined,
		EventUserCancel:       models.StatusCancelled,
	},
	models.StatusConfirmed: {
		EventVendorConfirm: models.StatusConfirmed,
		EventVendorDecline: models.StatusDeclined,
		EventUserCancel:    models.StatusCancelled,
		EventMarkCompleted: models.StatusCompleted,
	},
}

// checkTransition resolves the target status for event from the current
// status. Terminal statuses allow nothing.
func checkTransition(from models.ReservationStatus, event string) (models.ReservationStatus, error) {
	if from.IsTerminal() {
		return "", &InvalidTransitionError{From: from, Event: event, Reason: "status is terminal"}
	}
	targets, ok := transitionTarget[from]
	if !ok {
		return "", &InvalidTransitionError{From: from, Event: event, Reason: "unknown status"}
	}
	to, ok := targets[event]
	if !ok {
		return "", &InvalidTransitionError{From: from, Event: event, Reason: "event not allowed in this status"}
	}
	return to, nil
}

// hoursUntilStart measures from now to the reservation's civil start in loc,
// the serving timezone used at validation time. StartMinutes is used rather
// than StartTime so wrapped-window starts that fall after midnight count
// toward the next day.
func hoursUntilStart(res *models.Reservation, now time.Time, loc *time.Location) (float64, error) {
	day, err := time.ParseInLocation("2006-01-02", res.Date, loc)
	if err != nil {
		return 0, err
	}
	start := day.Add(time.Duration(res.StartMinutes) * time.Minute)
	return start.Sub(now).Hours(), nil
}

// intervalEnd is the civil end of the reservation in loc. Wrapped-window
// reservations whose normalized start passed midnight end on the next day;
// StartMinutes carries that shift.
func intervalEnd(res *models.Reservation, loc *time.Location) (time.Time, error) {
	day, err := time.ParseInLocation("2006-01-02", res.Date, loc)
	if err != nil {
		return time.Time{}, err
	}
	return day.Add(time.Duration(res.EndMinutes()) * time.Minute), nil
}
