package dto

import (
	"time"

	"github.com/playzone/reservation-service/internal/models"
)

type CreateZoneRequest struct {
	Name            string  `json:"name"`
	OpenTime        string  `json:"open_time"`
	CloseTime       string  `json:"close_time"`
	RatePerHour     float64 `json:"rate_per_hour"`
	MaxBookingHours int     `json:"max_booking_hours"`
}

type CreateReservationRequest struct {
	RequesterID   string      `json:"requester_id"`
	Date          string      `json:"date"`
	StartTime     string      `json:"start_time"`
	DurationHours int         `json:"duration_hours"`
	Notes         string      `json:"notes,omitempty"`
	Items         []PriceItem `json:"items,omitempty"`
}

// PriceItem is an optional itemized sub-selection; when present the amount
// is the sum over items instead of the zone's flat rate.
type PriceItem struct {
	Label       string  `json:"label"`
	Hours       int     `json:"hours"`
	RatePerHour float64 `json:"rate_per_hour"`
}

type PaymentOutcomeRequest struct {
	Outcome     string `json:"outcome"`
	ExternalRef string `json:"external_ref"`
	Reason      string `json:"reason,omitempty"`
}

type CancelRequest struct {
	ActorID string `json:"actor_id"`
	Reason  string `json:"reason,omitempty"`
}

type VendorDecisionRequest struct {
	ActorID  string `json:"actor_id"`
	Decision string `json:"decision"`
	Reason   string `json:"reason,omitempty"`
}

type ReservationResponse struct {
	ID              uint                     `json:"id"`
	Reference       string                   `json:"reference"`
	ZoneID          uint                     `json:"zone_id"`
	RequesterID     string                   `json:"requester_id"`
	Date            string                   `json:"date"`
	StartTime       string                   `json:"start_time"`
	DurationHours   int                      `json:"duration_hours"`
	Status          models.ReservationStatus `json:"status"`
	Amount          float64                  `json:"amount"`
	Notes           string                   `json:"notes,omitempty"`
	PaymentDeadline *time.Time               `json:"payment_deadline,omitempty"`
	CancelReason    string                   `json:"cancel_reason,omitempty"`
	CancelActor     string                   `json:"cancel_actor,omitempty"`
	CancelledAt     *time.Time               `json:"cancelled_at,omitempty"`
	CreatedAt       time.Time                `json:"created_at"`
	UpdatedAt       time.Time                `json:"updated_at"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}

func ToReservationResponse(r *models.Reservation) ReservationResponse {
	return ReservationResponse{
		ID:              r.ID,
		Reference:       r.Reference,
		ZoneID:          r.ZoneID,
		RequesterID:     r.RequesterID,
		Date:            r.Date,
		StartTime:       r.StartTime,
		DurationHours:   r.DurationHours,
		Status:          r.Status,
		Amount:          r.Amount,
		Notes:           r.Notes,
		PaymentDeadline: r.PaymentDeadline,
		CancelReason:    r.CancelReason,
		CancelActor:     r.CancelActor,
		CancelledAt:     r.CancelledAt,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}
