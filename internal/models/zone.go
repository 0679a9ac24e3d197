package models

import "time"

// Zone is a bookable physical resource with fixed operating hours. A window
// whose close is at or before its open (e.g. 22:00-02:00) wraps past
// midnight.
type Zone struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Name            string    `gorm:"not null" json:"name"`
	OpenTime        string    `gorm:"type:varchar(5);not null" json:"open_time"`
	CloseTime       string    `gorm:"type:varchar(5);not null" json:"close_time"`
	RatePerHour     float64   `gorm:"not null" json:"rate_per_hour"`
	MaxBookingHours int       `gorm:"not null;default:4" json:"max_booking_hours"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
