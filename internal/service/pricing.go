package service

import "github.com/playzone/reservation-service/internal/models"

// PricingSource quotes the amount for a booking. The amount is computed once
// at creation and frozen on the reservation.
type PricingSource interface {
	Quote(zone *models.Zone, durationHours int) float64
}

// FlatRatePricing is the default: the zone's hourly rate times the booked
// hours.
type FlatRatePricing struct{}

func (FlatRatePricing) Quote(zone *models.Zone, durationHours int) float64 {
	return zone.RatePerHour * float64(durationHours)
}

// PriceItem is one sub-selection with its own rate, for deployments that
// price parts of a zone separately.
type PriceItem struct {
	Label       string
	Hours       int
	RatePerHour float64
}

// ItemizedPricing sums its items and ignores the zone's flat rate. The
// booked duration still drives validation; only the amount differs.
type ItemizedPricing struct {
	Items []PriceItem
}

func (p ItemizedPricing) Quote(_ *models.Zone, _ int) float64 {
	var total float64
	for _, it := range p.Items {
		total += float64(it.Hours) * it.RatePerHour
	}
	return total
}
