// Package notify defines the events the reservation engine emits and the
// sink they are delivered to. Each event kind has its own payload type so
// consumers get exactly the fields that kind carries.
package notify

import "time"

type Event interface {
	// Kind is the event name used as the routing-key suffix.
	Kind() string
}

// ReservationRef is the identifying fields every event carries.
type ReservationRef struct {
	ReservationID uint   `json:"reservation_id"`
	Reference     string `json:"reference"`
	ZoneID        uint   `json:"zone_id"`
	RequesterID   string `json:"requester_id"`
}

type ReservationCreated struct {
	ReservationRef
	Date            string     `json:"date"`
	StartTime       string     `json:"start_time"`
	DurationHours   int        `json:"duration_hours"`
	Amount          float64    `json:"amount"`
	PaymentDeadline *time.Time `json:"payment_deadline,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

func (ReservationCreated) Kind() string { return "created" }

type PaymentSucceeded struct {
	ReservationRef
	ExternalRef string    `json:"external_ref"`
	PaidAt      time.Time `json:"paid_at"`
}

func (PaymentSucceeded) Kind() string { return "payment_succeeded" }

type PaymentFailed struct {
	ReservationRef
	ExternalRef string    `json:"external_ref,omitempty"`
	Reason      string    `json:"reason,omitempty"`
	FailedAt    time.Time `json:"failed_at"`
}

func (PaymentFailed) Kind() string { return "payment_failed" }

type Cancelled struct {
	ReservationRef
	Actor       string    `json:"actor"`
	Reason      string    `json:"reason,omitempty"`
	CancelledAt time.Time `json:"cancelled_at"`
}

func (Cancelled) Kind() string { return "cancelled" }

type Confirmed struct {
	ReservationRef
	Actor       string    `json:"actor"`
	ConfirmedAt time.Time `json:"confirmed_at"`
}

func (Confirmed) Kind() string { return "confirmed" }

type Declined struct {
	ReservationRef
	Actor      string    `json:"actor"`
	Reason     string    `json:"reason"`
	DeclinedAt time.Time `json:"declined_at"`
}

func (Declined) Kind() string { return "declined" }

type Expired struct {
	ReservationRef
	Deadline  time.Time `json:"deadline"`
	ExpiredAt time.Time `json:"expired_at"`
}

func (Expired) Kind() string { return "expired" }

// Ref builds the identifying fields shared by all event payloads.
func Ref(reservationID uint, reference string, zoneID uint, requesterID string) ReservationRef {
	return ReservationRef{
		ReservationID: reservationID,
		Reference:     reference,
		ZoneID:        zoneID,
		RequesterID:   requesterID,
	}
}
