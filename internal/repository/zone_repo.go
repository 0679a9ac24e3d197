package repository

import (
	"context"

	"github.com/playzone/reservation-service/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ZoneRepository interface {
	Create(ctx context.Context, zone *models.Zone) error
	FindByID(ctx context.Context, id uint) (*models.Zone, error)
	// FindByIDForUpdate locks the zone row for the duration of tx,
	// serializing concurrent reservation attempts on the same zone.
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Zone, error)
	FindAll(ctx context.Context) ([]models.Zone, error)
}

type zoneRepository struct {
	db *gorm.DB
}

func NewZoneRepository(db *gorm.DB) ZoneRepository {
	return &zoneRepository{db: db}
}

func (r *zoneRepository) Create(ctx context.Context, zone *models.Zone) error {
	return r.db.WithContext(ctx).Create(zone).Error
}

func (r *zoneRepository) FindByID(ctx context.Context, id uint) (*models.Zone, error) {
	var zone models.Zone
	if err := r.db.WithContext(ctx).First(&zone, id).Error; err != nil {
		return nil, err
	}
	return &zone, nil
}

func (r *zoneRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Zone, error) {
	var zone models.Zone
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&zone, id).Error
	if err != nil {
		return nil, err
	}
	return &zone, nil
}

func (r *zoneRepository) FindAll(ctx context.Context) ([]models.Zone, error) {
	var zones []models.Zone
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&zones).Error; err != nil {
		return nil, err
	}
	return zones, nil
}
