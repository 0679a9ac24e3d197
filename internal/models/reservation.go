package models

import "time"

type ReservationStatus string

const (
	StatusPendingPayment ReservationStatus = "pending_payment"
	StatusConfirmed      ReservationStatus = "confirmed"
	StatusDeclined       ReservationStatus = "declined"
	StatusCancelled      ReservationStatus = "cancelled"
	StatusPaymentFailed  ReservationStatus = "payment_failed"
	StatusCompleted      ReservationStatus = "completed"
)

// Valid reports whether s is one of the six known statuses.
func (s ReservationStatus) Valid() bool {
	switch s {
	case StatusPendingPayment, StatusConfirmed, StatusDeclined,
		StatusCancelled, StatusPaymentFailed, StatusCompleted:
		return true
	}
	return false
}

// IsActive reports whether a reservation in this status holds its slot.
// Only active reservations count for conflict detection and availability.
func (s ReservationStatus) IsActive() bool {
	return s == StatusPendingPayment || s == StatusConfirmed
}

// IsTerminal reports whether no further transitions are allowed, except
// that Confirmed may still move to Cancelled or Completed.
func (s ReservationStatus) IsTerminal() bool {
	switch s {
	case StatusDeclined, StatusCancelled, StatusPaymentFailed, StatusCompleted:
		return true
	}
	return false
}

// ActiveStatuses is the status set used in slot-holding queries and in the
// partial unique index that backs the exclusivity guarantee.
var ActiveStatuses = []ReservationStatus{StatusPendingPayment, StatusConfirmed}

type Reservation struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	Reference   string            `gorm:"type:varchar(40);uniqueIndex;not null" json:"reference"`
	ZoneID      uint              `gorm:"not null;index:idx_zone_date" json:"zone_id"`
	RequesterID string            `gorm:"not null" json:"requester_id"`
	Date        string            `gorm:"type:varchar(10);not null;index:idx_zone_date" json:"date"`
	StartTime   string            `gorm:"type:varchar(5);not null" json:"start_time"`
	// StartMinutes is the start normalized into the zone's window minute
	// space; it is the column the active-status unique index covers.
	StartMinutes  int               `gorm:"not null" json:"-"`
	DurationHours int               `gorm:"not null" json:"duration_hours"`
	Status        ReservationStatus `gorm:"type:varchar(20);not null" json:"status"`
	Amount        float64           `gorm:"not null" json:"amount"`
	Notes         string            `json:"notes,omitempty"`

	PaymentDeadline *time.Time `json:"payment_deadline,omitempty"`

	CancelReason string     `json:"cancel_reason,omitempty"`
	CancelActor  string     `json:"cancel_actor,omitempty"`
	CancelledAt  *time.Time `json:"cancelled_at,omitempty"`

	PaymentAttempts []PaymentAttempt `gorm:"foreignKey:ReservationID" json:"payment_attempts,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Zone *Zone `gorm:"foreignKey:ZoneID" json:"zone,omitempty"`
}

// EndMinutes is the exclusive end of the reservation in window minute space.
func (r *Reservation) EndMinutes() int {
	return r.StartMinutes + r.DurationHours*60
}

// PaymentAttempt is an append-only record of one payment outcome reported
// for a reservation. Rows are never updated or deleted.
type PaymentAttempt struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ReservationID uint      `gorm:"not null;index" json:"reservation_id"`
	AttemptedAt   time.Time `gorm:"not null" json:"attempted_at"`
	ExternalRef   string    `json:"external_ref,omitempty"`
	Outcome       string    `gorm:"type:varchar(20);not null" json:"outcome"`
	Note          string    `json:"note,omitempty"`
}

const (
	AttemptOutcomeSucceeded = "succeeded"
	AttemptOutcomeFailed    = "failed"
	AttemptOutcomeExpired   = "expired"
)
