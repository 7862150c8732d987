package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Pranav-6954/Carpooling/internal/models"
	"github.com/Pranav-6954/Carpooling/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrBookingNotFound   = errors.New("booking not found")
	ErrInvalidSeats      = errors.New("seat count must be positive")
	ErrInvalidTransition = errors.New("invalid booking status transition")
	ErrBookingFinalized  = errors.New("booking is already finalized")
	ErrUnauthorizedActor = errors.New("actor is neither the passenger nor the driver")
)

type CreateBookingCommand struct {
	OfferingID      uint
	PassengerEmail  string
	Seats           int
	PickupLocation  string
	DropoffLocation string
	PriceOverride   float64
	PaymentMethod   models.PaymentMethod
}

type BookingService interface {
	CreateBooking(ctx context.Context, cmd CreateBookingCommand) (*models.Booking, error)
	Transition(ctx context.Context, bookingID uint, newStatus models.BookingStatus, reason string) (*models.Booking, error)
	Cancel(ctx context.Context, bookingID uint, actorEmail, reason string) (*models.Booking, error)
	CancelForOffering(ctx context.Context, offeringID uint, reason string) (int, error)
	CompleteForOffering(ctx context.Context, offeringID uint) (int, error)
	FixStuckBookings(ctx context.Context) (int, error)
	GetBooking(ctx context.Context, id uint) (*models.Booking, error)
	ListByPassenger(ctx context.Context, email string) ([]models.Booking, error)
	ListByDriver(ctx context.Context, driverEmail string) ([]models.Booking, error)
	EstimatePrice(ctx context.Context, from, to string, seats int) FareQuote
}

type bookingService struct {
	bookingRepo  repository.BookingRepository
	offeringRepo repository.OfferingRepository
	paymentRepo  repository.PaymentRepository
	ledger       *InventoryLedger
	fares        FareService
	sink         Sink
	log          *zap.Logger
}

func NewBookingService(
	bookingRepo repository.BookingRepository,
	offeringRepo repository.OfferingRepository,
	paymentRepo repository.PaymentRepository,
	ledger *InventoryLedger,
	fares FareService,
	sink Sink,
	log *zap.Logger,
) BookingService {
	if log == nil {
		log = zap.NewNop()
	}
	return &bookingService{
		bookingRepo:  bookingRepo,
		offeringRepo: offeringRepo,
		paymentRepo:  paymentRepo,
		ledger:       ledger,
		fares:        fares,
		sink:         sink,
		log:          log,
	}
}

// CreateBooking prices the trip, then reserves seats and inserts the booking
// in one transaction. Distance lookup happens before the transaction so no
// network I/O runs while the offering row is contended.
func (s *bookingService) CreateBooking(ctx context.Context, cmd CreateBookingCommand) (*models.Booking, error) {
	if cmd.Seats <= 0 {
		return nil, ErrInvalidSeats
	}
	if cmd.PaymentMethod == "" {
		cmd.PaymentMethod = models.MethodOnline
	}

	offering, err := s.offeringRepo.FindByID(ctx, cmd.OfferingID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOfferingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load offering: %w", err)
	}
	if offering.Status.Terminal() {
		return nil, ErrOfferingClosed
	}

	pickup := cmd.PickupLocation
	if pickup == "" {
		pickup = offering.FromLocation
	}
	dropoff := cmd.DropoffLocation
	if dropoff == "" {
		dropoff = offering.ToLocation
	}

	quote := s.fares.Quote(ctx, pickup, dropoff, cmd.Seats, "")
	total := quote.TotalPrice
	if cmd.PriceOverride > 0 {
		// Negotiated offer: the caller's price stands, the computed quote is
		// advisory only.
		total = Round2(cmd.PriceOverride)
	}

	booking := &models.Booking{
		OfferingID:      cmd.OfferingID,
		PassengerEmail:  cmd.PassengerEmail,
		Seats:           cmd.Seats,
		PickupLocation:  pickup,
		DropoffLocation: dropoff,
		DistanceKm:      quote.DistanceKm,
		TotalPrice:      total,
		PaymentMethod:   cmd.PaymentMethod,
	}
	if cmd.PaymentMethod == models.MethodCash {
		// No gateway step for cash: the booking is immediately actionable and
		// the confirmed payment row lands in the same transaction.
		booking.Status = models.BookingAccepted
		booking.PaymentStatus = models.PaymentPendingCollection
	} else {
		booking.Status = models.BookingPending
		booking.PaymentStatus = models.PaymentUnpaid
	}

	err = s.bookingRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.ledger.Reserve(ctx, tx, cmd.OfferingID, cmd.Seats); err != nil {
			return err
		}
		if err := s.bookingRepo.Create(ctx, tx, booking); err != nil {
			return fmt.Errorf("insert booking: %w", err)
		}
		if cmd.PaymentMethod == models.MethodCash {
			payment := &models.Payment{
				BookingID:   booking.ID,
				PayerEmail:  cmd.PassengerEmail,
				Amount:      booking.TotalPrice,
				ExternalRef: fmt.Sprintf("%s%d", models.CashRefPrefix, time.Now().UnixMilli()),
				Status:      models.PaymentConfirmed,
			}
			if err := s.paymentRepo.Create(ctx, tx, payment); err != nil {
				return fmt.Errorf("log cash payment: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.sink.Publish(offering.DriverEmail,
		fmt.Sprintf("New booking! %d seat(s) from %s to %s. Offer: Rs. %.2f (%s)",
			booking.Seats, pickup, dropoff, booking.TotalPrice, booking.PaymentMethod),
		models.CategoryBookingCreated)
	s.sink.Publish(cmd.PassengerEmail,
		fmt.Sprintf("Your booking request to %s is sent to the driver.", dropoff),
		models.CategoryBookingCreated)

	return booking, nil
}

// Transition moves a booking along the state machine. Authorization is the
// handler's job; a same-state request is a no-op returning the current
// booking. Seat restitution and re-reservation follow released-set membership
// of the from/to statuses, inside the same transaction as the status write.
func (s *bookingService) Transition(ctx context.Context, bookingID uint, newStatus models.BookingStatus, reason string) (*models.Booking, error) {
	var booking *models.Booking
	changed := false
	err := s.bookingRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		booking, err = s.bookingRepo.FindByIDForUpdate(ctx, tx, bookingID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBookingNotFound
		}
		if err != nil {
			return fmt.Errorf("load booking: %w", err)
		}

		target := s.resolveTarget(booking, newStatus)
		if target == booking.Status {
			return nil
		}
		if !models.CanTransition(booking.Status, target) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, booking.Status, target)
		}

		from := booking.Status
		switch {
		case !from.Released() && target.Released():
			if err := s.ledger.Release(ctx, tx, booking.OfferingID, booking.Seats); err != nil {
				return err
			}
		case from.Released() && !target.Released():
			if err := s.ledger.ReserveAgain(ctx, tx, booking.OfferingID, booking.Seats); err != nil {
				return err
			}
		}

		booking.Status = target
		if target == models.BookingCompleted {
			booking.PaymentStatus = models.PaymentPaid
		}
		if reason != "" && target.Released() {
			booking.CancellationReason = &reason
		}
		changed = true
		return s.bookingRepo.Save(ctx, tx, booking)
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.notifyStatus(booking)
	}
	return booking, nil
}

// resolveTarget applies the completion branch: cash rides settle in person
// after the trip, online rides only complete once the gateway confirmed.
func (s *bookingService) resolveTarget(b *models.Booking, requested models.BookingStatus) models.BookingStatus {
	if requested != models.BookingCompleted {
		return requested
	}
	if b.PaymentStatus == models.PaymentPaid {
		return models.BookingCompleted
	}
	if b.PaymentMethod == models.MethodCash {
		if b.Status == models.BookingCashPaymentPending {
			// Driver acknowledged the cash handover.
			return models.BookingCompleted
		}
		return models.BookingCashPaymentPending
	}
	return models.BookingPaymentPending
}

func (s *bookingService) Cancel(ctx context.Context, bookingID uint, actorEmail, reason string) (*models.Booking, error) {
	var booking *models.Booking
	var offering *models.Offering
	var actorIsPassenger bool

	err := s.bookingRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		booking, err = s.bookingRepo.FindByIDForUpdate(ctx, tx, bookingID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBookingNotFound
		}
		if err != nil {
			return fmt.Errorf("load booking: %w", err)
		}

		offering, err = s.offeringRepo.FindByID(ctx, booking.OfferingID)
		if err != nil {
			return fmt.Errorf("load offering: %w", err)
		}

		actorIsPassenger = booking.PassengerEmail == actorEmail
		if !actorIsPassenger && offering.DriverEmail != actorEmail {
			return ErrUnauthorizedActor
		}

		if booking.Status == models.BookingCancelled || booking.Status == models.BookingCompleted {
			return fmt.Errorf("%w: %s", ErrBookingFinalized, booking.Status)
		}

		// A rejected booking already gave its seats back; cancelling it must
		// not release them twice.
		if !booking.Status.Released() {
			if err := s.ledger.Release(ctx, tx, booking.OfferingID, booking.Seats); err != nil {
				return err
			}
		}

		booking.Status = models.BookingCancelled
		booking.CancellationReason = &reason
		return s.bookingRepo.Save(ctx, tx, booking)
	})
	if err != nil {
		return nil, err
	}

	actorRole := "Driver"
	counterparty := booking.PassengerEmail
	if actorIsPassenger {
		actorRole = "Passenger"
		counterparty = offering.DriverEmail
	}
	cancelReason := reason
	if cancelReason == "" {
		cancelReason = "No reason provided"
	}
	s.sink.Publish(counterparty,
		fmt.Sprintf("Booking Cancelled by %s. Reason: %s", actorRole, cancelReason),
		models.CategoryBookingCancelled)
	s.sink.Publish(actorEmail, "Booking successfully cancelled.", models.CategoryBookingCancelled)

	return booking, nil
}

// CancelForOffering force-cancels every booking still holding seats when the
// offering itself is cancelled or deleted. One transition per booking; the
// cascade never shortcuts the per-booking invariant checks.
func (s *bookingService) CancelForOffering(ctx context.Context, offeringID uint, reason string) (int, error) {
	var active []models.Booking
	err := s.bookingRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		active, err = s.bookingRepo.FindActiveByOffering(ctx, tx, offeringID)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("list active bookings: %w", err)
	}

	cancelled := 0
	driverReason := "Driver Cancelled: " + reason
	for _, b := range active {
		if _, err := s.Transition(ctx, b.ID, models.BookingCancelled, driverReason); err != nil {
			s.log.Error("cascade cancel failed",
				zap.Uint("booking_id", b.ID),
				zap.Error(err))
			continue
		}
		cancelled++
	}
	return cancelled, nil
}

// CompleteForOffering settles each in-progress booking when the driver marks
// the ride complete. Cash riders move to cash collection, unpaid online
// riders to payment pending, paid riders straight to completed.
func (s *bookingService) CompleteForOffering(ctx context.Context, offeringID uint) (int, error) {
	bookings, err := s.bookingRepo.FindByOfferingID(ctx, offeringID)
	if err != nil {
		return 0, fmt.Errorf("list bookings: %w", err)
	}

	updated := 0
	for _, b := range bookings {
		if b.Status != models.BookingAccepted && b.Status != models.BookingPaid {
			continue
		}
		if _, err := s.Transition(ctx, b.ID, models.BookingCompleted, ""); err != nil {
			s.log.Error("complete booking failed",
				zap.Uint("booking_id", b.ID),
				zap.Error(err))
			continue
		}
		updated++
	}
	return updated, nil
}

// FixStuckBookings is the operator override that forces bookings stranded in
// a transient payment state to COMPLETED/PAID. Idempotent: a second run finds
// nothing.
func (s *bookingService) FixStuckBookings(ctx context.Context) (int, error) {
	fixed := 0
	err := s.bookingRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stuck, err := s.bookingRepo.FindStuck(ctx, tx)
		if err != nil {
			return err
		}
		for i := range stuck {
			stuck[i].Status = models.BookingCompleted
			stuck[i].PaymentStatus = models.PaymentPaid
			if err := s.bookingRepo.Save(ctx, tx, &stuck[i]); err != nil {
				return err
			}
		}
		fixed = len(stuck)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("fix stuck bookings: %w", err)
	}
	if fixed > 0 {
		s.log.Warn("operator override: forced stuck bookings to completed",
			zap.Int("count", fixed))
	}
	return fixed, nil
}

func (s *bookingService) GetBooking(ctx context.Context, id uint) (*models.Booking, error) {
	booking, err := s.bookingRepo.FindByIDWithOffering(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBookingNotFound
	}
	return booking, err
}

func (s *bookingService) ListByPassenger(ctx context.Context, email string) ([]models.Booking, error) {
	return s.bookingRepo.FindByPassenger(ctx, email)
}

func (s *bookingService) ListByDriver(ctx context.Context, driverEmail string) ([]models.Booking, error) {
	return s.bookingRepo.FindByDriver(ctx, driverEmail)
}

// EstimatePrice is a pure quote with no side effects.
func (s *bookingService) EstimatePrice(ctx context.Context, from, to string, seats int) FareQuote {
	return s.fares.Quote(ctx, from, to, seats, "")
}

func (s *bookingService) notifyStatus(b *models.Booking) {
	var msg string
	category := models.CategoryBookingUpdated
	switch b.Status {
	case models.BookingAccepted:
		msg = fmt.Sprintf("Good news! Your booking to %s has been ACCEPTED. Please proceed to payment.", b.DropoffLocation)
	case models.BookingRejected:
		msg = fmt.Sprintf("Sorry, your booking request to %s was declined by the driver.", b.DropoffLocation)
	case models.BookingCompleted, models.BookingPaid:
		msg = fmt.Sprintf("Payment Successful! Your ride to %s is CONFIRMED.", b.DropoffLocation)
	case models.BookingCashPaymentPending:
		msg = "Ride Completed! Please pay cash to Driver."
		category = models.CategoryRideCompleted
	case models.BookingPaymentPending:
		msg = "Ride Completed! Please proceed to payment."
		category = models.CategoryRideCompleted
	case models.BookingCancelled:
		msg = fmt.Sprintf("Your booking to %s has been cancelled.", b.DropoffLocation)
		if b.CancellationReason != nil {
			msg = fmt.Sprintf("Your booking to %s has been cancelled. Reason: %s", b.DropoffLocation, *b.CancellationReason)
		}
		category = models.CategoryBookingCancelled
	default:
		msg = fmt.Sprintf("Your booking for ride to %s is now %s", b.DropoffLocation, b.Status)
	}
	s.sink.Publish(b.PassengerEmail, msg, category)
}
