package repository

import (
	"context"

	"github.com/Pranav-6954/Carpooling/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BookingRepository interface {
	Create(ctx context.Context, tx *gorm.DB, booking *models.Booking) error
	FindByIDWithOffering(ctx context.Context, id uint) (*models.Booking, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Booking, error)
	FindByOfferingID(ctx context.Context, offeringID uint) ([]models.Booking, error)
	FindActiveByOffering(ctx context.Context, tx *gorm.DB, offeringID uint) ([]models.Booking, error)
	FindByPassenger(ctx context.Context, email string) ([]models.Booking, error)
	FindByDriver(ctx context.Context, driverEmail string) ([]models.Booking, error)
	FindStuck(ctx context.Context, tx *gorm.DB) ([]models.Booking, error)
	Save(ctx context.Context, tx *gorm.DB, booking *models.Booking) error
	GetDB() *gorm.DB
}

type bookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) BookingRepository {
	return &bookingRepository{db: db}
}

func (r *bookingRepository) GetDB() *gorm.DB {
	return r.db
}

func (r *bookingRepository) Create(ctx context.Context, tx *gorm.DB, booking *models.Booking) error {
	return tx.WithContext(ctx).Create(booking).Error
}

func (r *bookingRepository) FindByIDWithOffering(ctx context.Context, id uint) (*models.Booking, error) {
	var booking models.Booking
	if err := r.db.WithContext(ctx).Preload("Offering").First(&booking, id).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

// FindByIDForUpdate locks the booking row so transitions on the same booking
// serialize.
func (r *bookingRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Booking, error) {
	var booking models.Booking
	if err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&booking, id).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) FindByOfferingID(ctx context.Context, offeringID uint) ([]models.Booking, error) {
	var bookings []models.Booking
	err := r.db.WithContext(ctx).
		Where("offering_id = ?", offeringID).
		Order("id ASC").
		Find(&bookings).Error
	return bookings, err
}

// FindActiveByOffering returns bookings still holding seats, for cascade
// cancellation when the whole offering goes away.
func (r *bookingRepository) FindActiveByOffering(ctx context.Context, tx *gorm.DB, offeringID uint) ([]models.Booking, error) {
	var bookings []models.Booking
	err := tx.WithContext(ctx).
		Where("offering_id = ? AND status NOT IN ?", offeringID,
			[]models.BookingStatus{models.BookingCancelled, models.BookingRejected, models.BookingCompleted}).
		Order("id ASC").
		Find(&bookings).Error
	return bookings, err
}

func (r *bookingRepository) FindByPassenger(ctx context.Context, email string) ([]models.Booking, error) {
	var bookings []models.Booking
	err := r.db.WithContext(ctx).
		Preload("Offering").
		Where("passenger_email = ?", email).
		Order("created_at DESC").
		Find(&bookings).Error
	return bookings, err
}

func (r *bookingRepository) FindByDriver(ctx context.Context, driverEmail string) ([]models.Booking, error) {
	var bookings []models.Booking
	err := r.db.WithContext(ctx).
		Preload("Offering").
		Joins("JOIN offerings ON offerings.id = bookings.offering_id").
		Where("offerings.driver_email = ?", driverEmail).
		Order("bookings.created_at DESC").
		Find(&bookings).Error
	return bookings, err
}

// FindStuck selects bookings sitting in a transient payment state, for the
// operator remediation sweep.
func (r *bookingRepository) FindStuck(ctx context.Context, tx *gorm.DB) ([]models.Booking, error) {
	var bookings []models.Booking
	err := tx.WithContext(ctx).
		Where("status IN ?", []models.BookingStatus{
			models.BookingPaymentPending,
			models.BookingCashPaymentPending,
		}).
		Or("status = ? AND payment_status <> ?", models.BookingAccepted, models.PaymentPaid).
		Order("id ASC").
		Find(&bookings).Error
	return bookings, err
}

func (r *bookingRepository) Save(ctx context.Context, tx *gorm.DB, booking *models.Booking) error {
	return tx.WithContext(ctx).Save(booking).Error
}
