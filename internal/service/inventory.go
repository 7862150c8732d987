package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Pranav-6954/Carpooling/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrOfferingNotFound     = errors.New("offering not found")
	ErrOfferingClosed       = errors.New("offering is not open")
	ErrInsufficientCapacity = errors.New("not enough seats available")
	// ErrSeatOverflow means a release would push the counter past the original
	// capacity. That can only happen when a transition released twice, so it
	// is surfaced as a fault rather than silently clamped.
	ErrSeatOverflow = errors.New("seat release exceeds offering capacity")
)

// InventoryLedger owns the available-seats counter. Reserve and Release must
// run inside the same transaction as the booking write that depends on them.
type InventoryLedger struct {
	offerings repository.OfferingRepository
	log       *zap.Logger
}

func NewInventoryLedger(offerings repository.OfferingRepository, log *zap.Logger) *InventoryLedger {
	if log == nil {
		log = zap.NewNop()
	}
	return &InventoryLedger{offerings: offerings, log: log}
}

// Reserve atomically checks and decrements the counter. The conditional
// update either claims the seats or touches nothing; the follow-up read only
// classifies the failure.
func (l *InventoryLedger) Reserve(ctx context.Context, tx *gorm.DB, offeringID uint, seats int) error {
	rows, err := l.offerings.ReserveSeats(ctx, tx, offeringID, seats)
	if err != nil {
		return fmt.Errorf("reserve seats: %w", err)
	}
	if rows == 1 {
		return nil
	}

	offering, err := l.offerings.FindByIDForUpdate(ctx, tx, offeringID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrOfferingNotFound
	}
	if err != nil {
		return fmt.Errorf("classify failed reservation: %w", err)
	}
	if offering.Status.Terminal() {
		return ErrOfferingClosed
	}
	return fmt.Errorf("%w: %d seat(s) remaining", ErrInsufficientCapacity, offering.AvailableSeats)
}

// ReserveAgain re-claims seats for a booking coming back from a released
// state. Seats may have been taken in the interim, so it is a full re-check.
func (l *InventoryLedger) ReserveAgain(ctx context.Context, tx *gorm.DB, offeringID uint, seats int) error {
	return l.Reserve(ctx, tx, offeringID, seats)
}

func (l *InventoryLedger) Release(ctx context.Context, tx *gorm.DB, offeringID uint, seats int) error {
	rows, err := l.offerings.ReleaseSeats(ctx, tx, offeringID, seats)
	if err != nil {
		return fmt.Errorf("release seats: %w", err)
	}
	if rows == 1 {
		return nil
	}

	if _, err := l.offerings.FindByIDForUpdate(ctx, tx, offeringID); errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrOfferingNotFound
	} else if err != nil {
		return fmt.Errorf("classify failed release: %w", err)
	}

	l.log.Error("seat release exceeds capacity, capping counter",
		zap.Uint("offering_id", offeringID),
		zap.Int("seats", seats))
	if err := l.offerings.CapSeats(ctx, tx, offeringID); err != nil {
		return fmt.Errorf("cap seats: %w", err)
	}
	return ErrSeatOverflow
}
