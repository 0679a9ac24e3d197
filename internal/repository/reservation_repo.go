package repository

import (
	"context"
	"time"

	"github.com/playzone/reservation-service/internal/models"
	"gorm.io/gorm"
)

type ReservationRepository interface {
	Create(ctx context.Context, tx *gorm.DB, res *models.Reservation) error
	FindByID(ctx context.Context, id uint) (*models.Reservation, error)
	FindByReference(ctx context.Context, ref string) (*models.Reservation, error)
	// FindActiveForZoneDate returns the slot-holding reservations for a
	// zone and date, optionally excluding one id (re-validation of an
	// existing reservation).
	FindActiveForZoneDate(ctx context.Context, tx *gorm.DB, zoneID uint, date string, excludeID uint) ([]models.Reservation, error)
	FindForZoneDate(ctx context.Context, zoneID uint, date string) ([]models.Reservation, error)
	FindExpiredPending(ctx context.Context, now time.Time) ([]models.Reservation, error)
	// UpdateStatusFrom applies a conditional status change: the row is
	// touched only if it is still in the expected status. Returns the
	// number of rows affected (0 means another writer got there first).
	UpdateStatusFrom(ctx context.Context, id uint, from, to models.ReservationStatus, updates map[string]any) (int64, error)
	AppendPaymentAttempt(ctx context.Context, attempt *models.PaymentAttempt) error
	// Transaction runs fn inside a database transaction; the tx handle is
	// passed to the repository methods that accept one.
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type reservationRepository struct {
	db *gorm.DB
}

func NewReservationRepository(db *gorm.DB) ReservationRepository {
	return &reservationRepository{db: db}
}

func (r *reservationRepository) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func (r *reservationRepository) Create(ctx context.Context, tx *gorm.DB, res *models.Reservation) error {
	return tx.WithContext(ctx).Create(res).Error
}

func (r *reservationRepository) FindByID(ctx context.Context, id uint) (*models.Reservation, error) {
	var res models.Reservation
	if err := r.db.WithContext(ctx).Preload("PaymentAttempts").First(&res, id).Error; err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *reservationRepository) FindByReference(ctx context.Context, ref string) (*models.Reservation, error) {
	var res models.Reservation
	err := r.db.WithContext(ctx).
		Preload("PaymentAttempts").
		Where("reference = ?", ref).
		First(&res).Error
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *reservationRepository) FindActiveForZoneDate(ctx context.Context, tx *gorm.DB, zoneID uint, date string, excludeID uint) ([]models.Reservation, error) {
	db := tx
	if db == nil {
		db = r.db
	}
	var out []models.Reservation
	q := db.WithContext(ctx).
		Where("zone_id = ? AND date = ? AND status IN ?", zoneID, date, models.ActiveStatuses)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Order("start_minutes ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *reservationRepository) FindForZoneDate(ctx context.Context, zoneID uint, date string) ([]models.Reservation, error) {
	var out []models.Reservation
	err := r.db.WithContext(ctx).
		Where("zone_id = ? AND date = ?", zoneID, date).
		Order("start_minutes ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *reservationRepository) FindExpiredPending(ctx context.Context, now time.Time) ([]models.Reservation, error) {
	var out []models.Reservation
	err := r.db.WithContext(ctx).
		Where("status = ? AND payment_deadline < ?", models.StatusPendingPayment, now).
		Order("id ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *reservationRepository) UpdateStatusFrom(ctx context.Context, id uint, from, to models.ReservationStatus, updates map[string]any) (int64, error) {
	if updates == nil {
		updates = map[string]any{}
	}
	updates["status"] = to
	result := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	return result.RowsAffected, result.Error
}

func (r *reservationRepository) AppendPaymentAttempt(ctx context.Context, attempt *models.PaymentAttempt) error {
	return r.db.WithContext(ctx).Create(attempt).Error
}
