package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Pranav-6954/Carpooling/internal/models"
	"github.com/Pranav-6954/Carpooling/internal/repository"
	"github.com/Pranav-6954/Carpooling/pkg/gateway"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrPaymentNotFound = errors.New("payment not found")
	ErrInvalidAmount   = errors.New("payment amount must be positive")
)

type PaymentService interface {
	CreateIntent(ctx context.Context, bookingID uint, payerEmail string) (*models.Payment, string, error)
	LogIntent(ctx context.Context, bookingID uint, payerEmail string, amount float64, externalRef string) (*models.Payment, error)
	LogCash(ctx context.Context, bookingID uint, payerEmail string, amount float64) (*models.Payment, error)
	Confirm(ctx context.Context, externalRef, methodRef string) (*models.Payment, error)
	FindByBooking(ctx context.Context, bookingID uint) (*models.Payment, error)
	ListByPayer(ctx context.Context, email string) ([]models.Payment, error)
	ListByDriver(ctx context.Context, driverEmail string) ([]models.Payment, error)
}

type paymentService struct {
	paymentRepo repository.PaymentRepository
	bookingRepo repository.BookingRepository
	gateway     gateway.PaymentGateway
	sink        Sink
	log         *zap.Logger
}

func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	bookingRepo repository.BookingRepository,
	gw gateway.PaymentGateway,
	sink Sink,
	log *zap.Logger,
) PaymentService {
	if log == nil {
		log = zap.NewNop()
	}
	return &paymentService{
		paymentRepo: paymentRepo,
		bookingRepo: bookingRepo,
		gateway:     gw,
		sink:        sink,
		log:         log,
	}
}

// CreateIntent opens a payment with the gateway for the booking's total and
// records it as PENDING. Returns the client secret for the caller to finish
// the flow.
func (s *paymentService) CreateIntent(ctx context.Context, bookingID uint, payerEmail string) (*models.Payment, string, error) {
	booking, err := s.bookingRepo.FindByIDWithOffering(ctx, bookingID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", ErrBookingNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("load booking: %w", err)
	}

	desc := fmt.Sprintf("Carpool booking #%d: %s to %s", booking.ID, booking.PickupLocation, booking.DropoffLocation)
	intent, err := s.gateway.CreateIntent(ctx, booking.TotalPrice, desc)
	if err != nil {
		return nil, "", fmt.Errorf("create payment intent: %w", err)
	}

	payment, err := s.LogIntent(ctx, bookingID, payerEmail, booking.TotalPrice, intent.Ref)
	if err != nil {
		return nil, "", err
	}
	return payment, intent.ClientSecret, nil
}

func (s *paymentService) LogIntent(ctx context.Context, bookingID uint, payerEmail string, amount float64, externalRef string) (*models.Payment, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	payment := &models.Payment{
		BookingID:   bookingID,
		PayerEmail:  payerEmail,
		Amount:      Round2(amount),
		ExternalRef: externalRef,
		Status:      models.PaymentPending,
	}
	if err := s.paymentRepo.Create(ctx, s.paymentRepo.GetDB(), payment); err != nil {
		return nil, fmt.Errorf("log payment intent: %w", err)
	}
	return payment, nil
}

// LogCash records an offline settlement. Cash needs no gateway round trip so
// the row is CONFIRMED from the start, tagged by the CASH_ ref prefix.
func (s *paymentService) LogCash(ctx context.Context, bookingID uint, payerEmail string, amount float64) (*models.Payment, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	payment := &models.Payment{
		BookingID:   bookingID,
		PayerEmail:  payerEmail,
		Amount:      Round2(amount),
		ExternalRef: fmt.Sprintf("%s%d", models.CashRefPrefix, time.Now().UnixMilli()),
		Status:      models.PaymentConfirmed,
	}
	if err := s.paymentRepo.Create(ctx, s.paymentRepo.GetDB(), payment); err != nil {
		return nil, fmt.Errorf("log cash payment: %w", err)
	}
	return payment, nil
}

// Confirm settles a payment by its external reference. Safe to call twice:
// an already confirmed payment returns unchanged. The booking side moves to
// PAID, and a booking parked in a payment-pending state completes. A payment
// whose booking row has gone missing is logged and left confirmed rather
// than failing the gateway callback.
func (s *paymentService) Confirm(ctx context.Context, externalRef, methodRef string) (*models.Payment, error) {
	var payment *models.Payment
	var booking *models.Booking

	err := s.paymentRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		payment, err = s.paymentRepo.FindByExternalRefForUpdate(ctx, tx, externalRef)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPaymentNotFound
		}
		if err != nil {
			return fmt.Errorf("load payment: %w", err)
		}

		if payment.Status == models.PaymentConfirmed {
			return nil
		}

		payment.Status = models.PaymentConfirmed
		if methodRef != "" {
			payment.MethodRef = methodRef
		}
		if err := s.paymentRepo.Save(ctx, tx, payment); err != nil {
			return fmt.Errorf("save payment: %w", err)
		}

		booking, err = s.bookingRepo.FindByIDForUpdate(ctx, tx, payment.BookingID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Error("confirmed payment references missing booking",
				zap.String("external_ref", externalRef),
				zap.Uint("booking_id", payment.BookingID))
			booking = nil
			return nil
		}
		if err != nil {
			return fmt.Errorf("load booking: %w", err)
		}

		booking.PaymentStatus = models.PaymentPaid
		switch booking.Status {
		case models.BookingPaymentPending, models.BookingCashPaymentPending:
			booking.Status = models.BookingCompleted
		case models.BookingAccepted:
			booking.Status = models.BookingPaid
		}
		return s.bookingRepo.Save(ctx, tx, booking)
	})
	if err != nil {
		return nil, err
	}

	if booking != nil {
		s.sink.Publish(payment.PayerEmail,
			fmt.Sprintf("Payment of Rs. %.2f received for your ride to %s.", payment.Amount, booking.DropoffLocation),
			models.CategoryPaymentReceived)
		if offering, oerr := s.driverOf(ctx, booking); oerr == nil {
			s.sink.Publish(offering.DriverEmail,
				fmt.Sprintf("Passenger %s paid Rs. %.2f for booking #%d.", payment.PayerEmail, payment.Amount, booking.ID),
				models.CategoryPaymentReceived)
		}
	}
	return payment, nil
}

func (s *paymentService) driverOf(ctx context.Context, b *models.Booking) (*models.Offering, error) {
	if b.Offering != nil {
		return b.Offering, nil
	}
	full, err := s.bookingRepo.FindByIDWithOffering(ctx, b.ID)
	if err != nil || full.Offering == nil {
		return nil, fmt.Errorf("offering for booking %d unavailable", b.ID)
	}
	return full.Offering, nil
}

func (s *paymentService) FindByBooking(ctx context.Context, bookingID uint) (*models.Payment, error) {
	payment, err := s.paymentRepo.FindByBookingID(ctx, bookingID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPaymentNotFound
	}
	return payment, err
}

func (s *paymentService) ListByPayer(ctx context.Context, email string) ([]models.Payment, error) {
	return s.paymentRepo.FindByPayer(ctx, email)
}

func (s *paymentService) ListByDriver(ctx context.Context, driverEmail string) ([]models.Payment, error) {
	return s.paymentRepo.FindByDriver(ctx, driverEmail)
}
