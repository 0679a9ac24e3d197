package database

import (
	"log"

	"github.com/playzone/reservation-service/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewPostgresDB(dsn string) *gorm.DB {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		// Duplicate-key violations surface as gorm.ErrDuplicatedKey so the
		// service can translate them into a slot conflict.
		TranslateError: true,
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.Zone{}, &models.Reservation{}, &models.PaymentAttempt{}); err != nil {
		log.Fatalf("failed to auto-migrate: %v", err)
	}

	// Partial unique index: the durable guarantee behind slot exclusivity.
	// The conflict pre-check in the service gives the good error message;
	// this index is what actually prevents two active reservations from
	// holding the same normalized start on one zone and date.
	db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_reservation_active_slot
		ON reservations (zone_id, date, start_minutes)
		WHERE status IN ('pending_payment', 'confirmed')
	`)

	return db
}
