package models

import "time"

type BookingStatus string

const (
	BookingPending            BookingStatus = "PENDING"
	BookingAccepted           BookingStatus = "ACCEPTED"
	BookingRejected           BookingStatus = "REJECTED"
	BookingPaid               BookingStatus = "PAID"
	BookingPaymentPending     BookingStatus = "PAYMENT_PENDING"
	BookingCashPaymentPending BookingStatus = "CASH_PAYMENT_PENDING"
	BookingCompleted          BookingStatus = "COMPLETED"
	BookingCancelled          BookingStatus = "CANCELLED"
)

type PaymentMethod string

const (
	MethodCash   PaymentMethod = "CASH"
	MethodOnline PaymentMethod = "ONLINE"
)

type BookingPaymentStatus string

const (
	PaymentUnpaid            BookingPaymentStatus = "UNPAID"
	PaymentPendingCollection BookingPaymentStatus = "PENDING_COLLECTION"
	PaymentPaid              BookingPaymentStatus = "PAID"
)

type Booking struct {
	ID                 uint                 `gorm:"primaryKey" json:"id"`
	OfferingID         uint                 `gorm:"not null;index" json:"offering_id"`
	PassengerEmail     string               `gorm:"not null;index" json:"passenger_email"`
	Seats              int                  `gorm:"not null" json:"seats"`
	PickupLocation     string               `json:"pickup_location"`
	DropoffLocation    string               `json:"dropoff_location"`
	DistanceKm         float64              `json:"distance_km"`
	TotalPrice         float64              `gorm:"not null" json:"total_price"`
	PaymentMethod      PaymentMethod        `gorm:"type:varchar(10);not null" json:"payment_method"`
	PaymentStatus      BookingPaymentStatus `gorm:"type:varchar(20);not null" json:"payment_status"`
	Status             BookingStatus        `gorm:"type:varchar(25);not null" json:"status"`
	CancellationReason *string              `json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time            `json:"created_at"`
	UpdatedAt          time.Time            `json:"updated_at"`

	Offering *Offering `gorm:"foreignKey:OfferingID" json:"offering,omitempty"`
}

// allowedTransitions encodes the booking state flow. A status missing from the
// map (or with an empty list) is terminal.
var allowedTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:            {BookingAccepted, BookingRejected, BookingCancelled},
	BookingAccepted:           {BookingPaid, BookingPaymentPending, BookingCashPaymentPending, BookingCompleted, BookingCancelled},
	BookingPaymentPending:     {BookingPaid, BookingCompleted, BookingCancelled},
	BookingCashPaymentPending: {BookingCompleted, BookingCancelled},
	BookingPaid:               {BookingCompleted, BookingCancelled},
	// A released booking may be reinstated, subject to seats still being free.
	BookingRejected: {BookingPending, BookingAccepted, BookingCancelled},
}

func CanTransition(from, to BookingStatus) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Released reports whether a status has given its seats back to the offering.
// Restitution happens exactly once, on the edge from a non-released status
// into a released one; the reverse edge re-reserves.
func (s BookingStatus) Released() bool {
	return s == BookingRejected || s == BookingCancelled
}

func (s BookingStatus) Terminal() bool {
	return s == BookingCompleted || s == BookingCancelled
}
