package service

import (
	"context"
	"errors"

	"github.com/playzone/reservation-service/internal/models"
	"github.com/playzone/reservation-service/internal/repository"
	"github.com/playzone/reservation-service/internal/timeslot"
	"gorm.io/gorm"
)

type ZoneService interface {
	CreateZone(ctx context.Context, zone *models.Zone) error
	GetZone(ctx context.Context, id uint) (*models.Zone, error)
	ListZones(ctx context.Context) ([]models.Zone, error)
}

type zoneService struct {
	repo repository.ZoneRepository
}

func NewZoneService(repo repository.ZoneRepository) ZoneService {
	return &zoneService{repo: repo}
}

func (s *zoneService) CreateZone(ctx context.Context, zone *models.Zone) error {
	if zone.Name == "" {
		return &ValidationError{Field: "name", Message: "must not be empty"}
	}
	if _, err := timeslot.ToMinutes(zone.OpenTime); err != nil {
		return &ValidationError{Field: "open_time", Message: err.Error()}
	}
	if _, err := timeslot.ToMinutes(zone.CloseTime); err != nil {
		return &ValidationError{Field: "close_time", Message: err.Error()}
	}
	if zone.RatePerHour < 0 {
		return &ValidationError{Field: "rate_per_hour", Message: "must not be negative"}
	}
	if zone.MaxBookingHours < 1 {
		return &ValidationError{Field: "max_booking_hours", Message: "must be at least 1"}
	}
	return s.repo.Create(ctx, zone)
}

func (s *zoneService) GetZone(ctx context.Context, id uint) (*models.Zone, error) {
	zone, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrZoneNotFound
		}
		return nil, err
	}
	return zone, nil
}

func (s *zoneService) ListZones(ctx context.Context) ([]models.Zone, error) {
	return s.repo.FindAll(ctx)
}
