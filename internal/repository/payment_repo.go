package repository

import (
	"context"

	"github.com/Pranav-6954/Carpooling/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PaymentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, payment *models.Payment) error
	FindByExternalRefForUpdate(ctx context.Context, tx *gorm.DB, ref string) (*models.Payment, error)
	FindByBookingID(ctx context.Context, bookingID uint) (*models.Payment, error)
	FindByPayer(ctx context.Context, email string) ([]models.Payment, error)
	FindByDriver(ctx context.Context, driverEmail string) ([]models.Payment, error)
	Save(ctx context.Context, tx *gorm.DB, payment *models.Payment) error
	GetDB() *gorm.DB
}

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) GetDB() *gorm.DB {
	return r.db
}

func (r *paymentRepository) Create(ctx context.Context, tx *gorm.DB, payment *models.Payment) error {
	return tx.WithContext(ctx).Create(payment).Error
}

// FindByExternalRefForUpdate locks the payment row so a confirmation racing a
// duplicate webhook delivery settles exactly once.
func (r *paymentRepository) FindByExternalRefForUpdate(ctx context.Context, tx *gorm.DB, ref string) (*models.Payment, error) {
	var payment models.Payment
	if err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("external_ref = ?", ref).
		First(&payment).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) FindByBookingID(ctx context.Context, bookingID uint) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("id DESC").
		First(&payment).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) FindByPayer(ctx context.Context, email string) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).
		Where("payer_email = ?", email).
		Order("created_at DESC").
		Find(&payments).Error
	return payments, err
}

// FindByDriver returns payments against bookings on the driver's offerings.
func (r *paymentRepository) FindByDriver(ctx context.Context, driverEmail string) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.WithContext(ctx).
		Joins("JOIN bookings ON bookings.id = payments.booking_id").
		Joins("JOIN offerings ON offerings.id = bookings.offering_id").
		Where("offerings.driver_email = ?", driverEmail).
		Order("payments.created_at DESC").
		Find(&payments).Error
	return payments, err
}

func (r *paymentRepository) Save(ctx context.Context, tx *gorm.DB, payment *models.Payment) error {
	return tx.WithContext(ctx).Save(payment).Error
}
