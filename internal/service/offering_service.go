package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Pranav-6954/Carpooling/internal/models"
	"github.com/Pranav-6954/Carpooling/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrPriceAboveCeiling   = errors.New("price per seat exceeds the allowed ceiling")
	ErrInvalidCapacity     = errors.New("capacity must be positive")
	ErrNotOfferingOwner    = errors.New("only the posting driver may modify this offering")
	ErrOfferingHasBookings = errors.New("offering has active bookings")
)

type CreateOfferingCommand struct {
	DriverEmail   string
	DriverName    string
	FromLocation  string
	ToLocation    string
	TravelDate    string
	PricePerSeat  float64
	Capacity      int
	VehicleType   string
	ImageURL      string
	SelfSeats     int
	PriceOverride bool
}

type UpdateOfferingCommand struct {
	TravelDate    string
	PricePerSeat  float64
	VehicleType   string
	ImageURL      string
	PriceOverride bool
}

type OfferingService interface {
	CreatePost(ctx context.Context, cmd CreateOfferingCommand) (*models.Offering, error)
	Update(ctx context.Context, id uint, driverEmail string, cmd UpdateOfferingCommand) (*models.Offering, error)
	CancelOffering(ctx context.Context, id uint, driverEmail, reason string) (*models.Offering, error)
	CompleteOffering(ctx context.Context, id uint, driverEmail string) (*models.Offering, error)
	Get(ctx context.Context, id uint) (*models.Offering, error)
	ListOpen(ctx context.Context) ([]models.Offering, error)
	ListByDriver(ctx context.Context, driverEmail string) ([]models.Offering, error)
	Search(ctx context.Context, from, to, date string) ([]models.Offering, error)
	CountExpired(ctx context.Context) (int64, error)
}

type offeringService struct {
	offeringRepo repository.OfferingRepository
	bookings     BookingService
	fares        FareService
	sink         Sink
	log          *zap.Logger
}

func NewOfferingService(
	offeringRepo repository.OfferingRepository,
	bookings BookingService,
	fares FareService,
	sink Sink,
	log *zap.Logger,
) OfferingService {
	if log == nil {
		log = zap.NewNop()
	}
	return &offeringService{
		offeringRepo: offeringRepo,
		bookings:     bookings,
		fares:        fares,
		sink:         sink,
		log:          log,
	}
}

// CreatePost publishes a new offering. A non-positive price is auto-priced at
// the per-seat ceiling for the route; an explicit price must stay under that
// ceiling unless the driver forces an override.
func (s *offeringService) CreatePost(ctx context.Context, cmd CreateOfferingCommand) (*models.Offering, error) {
	if cmd.Capacity <= 0 {
		return nil, ErrInvalidCapacity
	}

	ceiling := s.fares.MaxSeatPrice(ctx, cmd.FromLocation, cmd.ToLocation, cmd.Capacity)
	price := Round2(cmd.PricePerSeat)
	if price <= 0 {
		price = ceiling
	} else if !cmd.PriceOverride && price > ceiling {
		return nil, fmt.Errorf("%w: %.2f > %.2f", ErrPriceAboveCeiling, price, ceiling)
	}

	quote := s.fares.Quote(ctx, cmd.FromLocation, cmd.ToLocation, 1, "")

	offering := &models.Offering{
		DriverEmail:    cmd.DriverEmail,
		DriverName:     cmd.DriverName,
		FromLocation:   cmd.FromLocation,
		ToLocation:     cmd.ToLocation,
		Route:          strings.Join(quote.SuggestedRoute, " -> "),
		TravelDate:     cmd.TravelDate,
		PricePerSeat:   price,
		Capacity:       cmd.Capacity,
		AvailableSeats: cmd.Capacity,
		VehicleType:    cmd.VehicleType,
		ImageURL:       cmd.ImageURL,
		Status:         models.OfferingOpen,
	}
	if err := s.offeringRepo.Create(ctx, offering); err != nil {
		return nil, fmt.Errorf("create offering: %w", err)
	}

	// The driver may hold seats for themselves. This goes through the normal
	// booking path so the ledger stays the single source of seat truth; a
	// failure here is logged, the post itself stands.
	if cmd.SelfSeats > 0 {
		_, err := s.bookings.CreateBooking(ctx, CreateBookingCommand{
			OfferingID:     offering.ID,
			PassengerEmail: cmd.DriverEmail,
			Seats:          cmd.SelfSeats,
			PaymentMethod:  models.MethodCash,
		})
		if err != nil {
			s.log.Warn("driver self-reservation failed",
				zap.Uint("offering_id", offering.ID),
				zap.Error(err))
		} else {
			fresh, ferr := s.offeringRepo.FindByID(ctx, offering.ID)
			if ferr == nil {
				offering = fresh
			}
		}
	}

	return offering, nil
}

func (s *offeringService) Update(ctx context.Context, id uint, driverEmail string, cmd UpdateOfferingCommand) (*models.Offering, error) {
	offering, err := s.offeringRepo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOfferingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load offering: %w", err)
	}
	if offering.DriverEmail != driverEmail {
		return nil, ErrNotOfferingOwner
	}
	if offering.Status.Terminal() {
		return nil, ErrOfferingClosed
	}

	if cmd.PricePerSeat > 0 {
		price := Round2(cmd.PricePerSeat)
		if !cmd.PriceOverride {
			ceiling := s.fares.MaxSeatPrice(ctx, offering.FromLocation, offering.ToLocation, offering.Capacity)
			if price > ceiling {
				return nil, fmt.Errorf("%w: %.2f > %.2f", ErrPriceAboveCeiling, price, ceiling)
			}
		}
		offering.PricePerSeat = price
	}
	if cmd.TravelDate != "" {
		offering.TravelDate = cmd.TravelDate
	}
	if cmd.VehicleType != "" {
		offering.VehicleType = cmd.VehicleType
	}
	if cmd.ImageURL != "" {
		offering.ImageURL = cmd.ImageURL
	}

	if err := s.offeringRepo.Save(ctx, offering); err != nil {
		return nil, fmt.Errorf("save offering: %w", err)
	}
	return offering, nil
}

// CancelOffering moves the offering to CANCELLED and force-cancels every
// booking still holding seats, one transition per booking. Terminal offerings
// freeze their seat count.
func (s *offeringService) CancelOffering(ctx context.Context, id uint, driverEmail, reason string) (*models.Offering, error) {
	offering, err := s.authorizedOpen(ctx, id, driverEmail)
	if err != nil {
		return nil, err
	}

	cancelled, err := s.bookings.CancelForOffering(ctx, id, reason)
	if err != nil {
		return nil, err
	}

	err = s.offeringRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.offeringRepo.UpdateStatus(ctx, tx, id, models.OfferingCancelled, &reason)
	})
	if err != nil {
		return nil, fmt.Errorf("cancel offering: %w", err)
	}
	offering.Status = models.OfferingCancelled
	offering.CancellationReason = &reason

	s.log.Info("offering cancelled",
		zap.Uint("offering_id", id),
		zap.Int("bookings_cancelled", cancelled))
	s.sink.Publish(driverEmail,
		fmt.Sprintf("Your ride from %s to %s has been cancelled. %d booking(s) were notified.",
			offering.FromLocation, offering.ToLocation, cancelled),
		models.CategoryRideCancelled)

	return offering, nil
}

// CompleteOffering marks the ride done and settles each in-progress booking.
func (s *offeringService) CompleteOffering(ctx context.Context, id uint, driverEmail string) (*models.Offering, error) {
	offering, err := s.authorizedOpen(ctx, id, driverEmail)
	if err != nil {
		return nil, err
	}

	settled, err := s.bookings.CompleteForOffering(ctx, id)
	if err != nil {
		return nil, err
	}

	err = s.offeringRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.offeringRepo.UpdateStatus(ctx, tx, id, models.OfferingCompleted, nil)
	})
	if err != nil {
		return nil, fmt.Errorf("complete offering: %w", err)
	}
	offering.Status = models.OfferingCompleted

	s.log.Info("offering completed",
		zap.Uint("offering_id", id),
		zap.Int("bookings_settled", settled))

	return offering, nil
}

func (s *offeringService) authorizedOpen(ctx context.Context, id uint, driverEmail string) (*models.Offering, error) {
	offering, err := s.offeringRepo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOfferingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load offering: %w", err)
	}
	if offering.DriverEmail != driverEmail {
		return nil, ErrNotOfferingOwner
	}
	if offering.Status.Terminal() {
		return nil, ErrOfferingClosed
	}
	return offering, nil
}

func (s *offeringService) Get(ctx context.Context, id uint) (*models.Offering, error) {
	offering, err := s.offeringRepo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOfferingNotFound
	}
	return offering, err
}

func (s *offeringService) ListOpen(ctx context.Context) ([]models.Offering, error) {
	return s.offeringRepo.ListOpen(ctx)
}

func (s *offeringService) ListByDriver(ctx context.Context, driverEmail string) ([]models.Offering, error) {
	return s.offeringRepo.ListByDriver(ctx, driverEmail)
}

func (s *offeringService) Search(ctx context.Context, from, to, date string) ([]models.Offering, error) {
	return s.offeringRepo.Search(ctx, strings.ToLower(from), strings.ToLower(to), date)
}

// CountExpired reports how many offerings outlived their travel date while
// still OPEN. The count is exact.
func (s *offeringService) CountExpired(ctx context.Context) (int64, error) {
	return s.offeringRepo.CountExpiredOpen(ctx, time.Now().Format("2006-01-02"))
}
