package models

import "time"

type OfferingStatus string

const (
	OfferingOpen      OfferingStatus = "OPEN"
	OfferingCancelled OfferingStatus = "CANCELLED"
	OfferingCompleted OfferingStatus = "COMPLETED"
)

// Terminal reports whether the offering can no longer change. Seats on a
// terminal offering are frozen.
func (s OfferingStatus) Terminal() bool {
	return s == OfferingCancelled || s == OfferingCompleted
}

type Offering struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	DriverEmail        string         `gorm:"not null;index" json:"driver_email"`
	DriverName         string         `json:"driver_name"`
	FromLocation       string         `gorm:"not null" json:"from_location"`
	ToLocation         string         `gorm:"not null" json:"to_location"`
	Route              string         `json:"route,omitempty"`
	TravelDate         string         `gorm:"not null" json:"travel_date"`
	PricePerSeat       float64        `gorm:"not null" json:"price_per_seat"`
	Capacity           int            `gorm:"not null" json:"capacity"`
	AvailableSeats     int            `gorm:"not null" json:"available_seats"`
	VehicleType        string         `json:"vehicle_type,omitempty"`
	ImageURL           string         `json:"image_url,omitempty"`
	Status             OfferingStatus `gorm:"type:varchar(20);not null;default:'OPEN'" json:"status"`
	CancellationReason *string        `json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}
