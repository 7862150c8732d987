package repository

import (
	"context"

	"github.com/Pranav-6954/Carpooling/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OfferingRepository interface {
	Create(ctx context.Context, offering *models.Offering) error
	FindByID(ctx context.Context, id uint) (*models.Offering, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Offering, error)
	Save(ctx context.Context, offering *models.Offering) error
	ListOpen(ctx context.Context) ([]models.Offering, error)
	ListByDriver(ctx context.Context, driverEmail string) ([]models.Offering, error)
	Search(ctx context.Context, from, to, date string) ([]models.Offering, error)
	ReserveSeats(ctx context.Context, tx *gorm.DB, id uint, seats int) (int64, error)
	ReleaseSeats(ctx context.Context, tx *gorm.DB, id uint, seats int) (int64, error)
	CapSeats(ctx context.Context, tx *gorm.DB, id uint) error
	UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, status models.OfferingStatus, reason *string) error
	CountExpiredOpen(ctx context.Context, today string) (int64, error)
	GetDB() *gorm.DB
}

type offeringRepository struct {
	db *gorm.DB
}

func NewOfferingRepository(db *gorm.DB) OfferingRepository {
	return &offeringRepository{db: db}
}

func (r *offeringRepository) GetDB() *gorm.DB {
	return r.db
}

func (r *offeringRepository) Create(ctx context.Context, offering *models.Offering) error {
	return r.db.WithContext(ctx).Create(offering).Error
}

func (r *offeringRepository) FindByID(ctx context.Context, id uint) (*models.Offering, error) {
	var offering models.Offering
	if err := r.db.WithContext(ctx).First(&offering, id).Error; err != nil {
		return nil, err
	}
	return &offering, nil
}

// FindByIDForUpdate acquires a row-level lock on the offering within the given
// transaction.
func (r *offeringRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Offering, error) {
	var offering models.Offering
	if err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&offering, id).Error; err != nil {
		return nil, err
	}
	return &offering, nil
}

func (r *offeringRepository) Save(ctx context.Context, offering *models.Offering) error {
	return r.db.WithContext(ctx).Save(offering).Error
}

func (r *offeringRepository) ListOpen(ctx context.Context) ([]models.Offering, error) {
	var offerings []models.Offering
	err := r.db.WithContext(ctx).
		Where("status = ? AND available_seats > 0", models.OfferingOpen).
		Order("travel_date ASC, id ASC").
		Find(&offerings).Error
	return offerings, err
}

func (r *offeringRepository) ListByDriver(ctx context.Context, driverEmail string) ([]models.Offering, error) {
	var offerings []models.Offering
	err := r.db.WithContext(ctx).
		Where("driver_email = ?", driverEmail).
		Order("id DESC").
		Find(&offerings).Error
	return offerings, err
}

func (r *offeringRepository) Search(ctx context.Context, from, to, date string) ([]models.Offering, error) {
	var offerings []models.Offering
	q := r.db.WithContext(ctx).
		Where("status = ? AND available_seats > 0", models.OfferingOpen)
	if from != "" {
		q = q.Where("LOWER(from_location) LIKE ? OR LOWER(route) LIKE ?", "%"+from+"%", "%"+from+"%")
	}
	if to != "" {
		q = q.Where("LOWER(to_location) LIKE ? OR LOWER(route) LIKE ?", "%"+to+"%", "%"+to+"%")
	}
	if date != "" {
		q = q.Where("travel_date = ?", date)
	}
	err := q.Order("travel_date ASC, id ASC").Find(&offerings).Error
	return offerings, err
}

// ReserveSeats is the seat ledger's critical section: a single conditional
// update that checks and decrements at once, so two concurrent reservations
// against the last seats can never both succeed. Returns rows affected.
func (r *offeringRepository) ReserveSeats(ctx context.Context, tx *gorm.DB, id uint, seats int) (int64, error) {
	res := tx.WithContext(ctx).
		Model(&models.Offering{}).
		Where("id = ? AND status = ? AND available_seats >= ?", id, models.OfferingOpen, seats).
		Update("available_seats", gorm.Expr("available_seats - ?", seats))
	return res.RowsAffected, res.Error
}

// ReleaseSeats increments only while the result stays within capacity; the
// overflow case is handled by the ledger, which treats it as a logic fault.
func (r *offeringRepository) ReleaseSeats(ctx context.Context, tx *gorm.DB, id uint, seats int) (int64, error) {
	res := tx.WithContext(ctx).
		Model(&models.Offering{}).
		Where("id = ? AND available_seats + ? <= capacity", id, seats).
		Update("available_seats", gorm.Expr("available_seats + ?", seats))
	return res.RowsAffected, res.Error
}

func (r *offeringRepository) CapSeats(ctx context.Context, tx *gorm.DB, id uint) error {
	return tx.WithContext(ctx).
		Model(&models.Offering{}).
		Where("id = ?", id).
		Update("available_seats", gorm.Expr("capacity")).Error
}

func (r *offeringRepository) UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, status models.OfferingStatus, reason *string) error {
	updates := map[string]any{"status": status}
	if reason != nil {
		updates["cancellation_reason"] = *reason
	}
	return tx.WithContext(ctx).
		Model(&models.Offering{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// CountExpiredOpen counts offerings whose travel date has passed while still
// OPEN. Reporting only; EXPIRED is never a stored status.
func (r *offeringRepository) CountExpiredOpen(ctx context.Context, today string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Offering{}).
		Where("status = ? AND travel_date < ?", models.OfferingOpen, today).
		Count(&count).Error
	return count, err
}
