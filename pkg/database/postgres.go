package database

import (
	"log"

	"github.com/Pranav-6954/Carpooling/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewPostgresDB(dsn string) *gorm.DB {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Offering{},
		&models.Booking{},
		&models.Payment{},
		&models.Notification{},
	); err != nil {
		log.Fatalf("failed to auto-migrate: %v", err)
	}

	// Storage-level guard for the seat ledger: a missed conditional update in
	// application code becomes a hard constraint error, not silent corruption.
	db.Exec(`ALTER TABLE offerings DROP CONSTRAINT IF EXISTS chk_available_seats`)
	db.Exec(`
		ALTER TABLE offerings ADD CONSTRAINT chk_available_seats
		CHECK (available_seats >= 0 AND available_seats <= capacity)
	`)

	return db
}
