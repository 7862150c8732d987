package dto

import "github.com/Pranav-6954/Carpooling/internal/models"

type CreateOfferingRequest struct {
	DriverName    string  `json:"driver_name"`
	FromLocation  string  `json:"from_location"`
	ToLocation    string  `json:"to_location"`
	TravelDate    string  `json:"travel_date"`
	PricePerSeat  float64 `json:"price_per_seat"`
	Capacity      int     `json:"capacity"`
	VehicleType   string  `json:"vehicle_type"`
	ImageURL      string  `json:"image_url"`
	SelfSeats     int     `json:"self_seats"`
	PriceOverride bool    `json:"price_override"`
}

type UpdateOfferingRequest struct {
	TravelDate    string  `json:"travel_date"`
	PricePerSeat  float64 `json:"price_per_seat"`
	VehicleType   string  `json:"vehicle_type"`
	ImageURL      string  `json:"image_url"`
	PriceOverride bool    `json:"price_override"`
}

type CancelRequest struct {
	Reason string `json:"reason"`
}

type CreateBookingRequest struct {
	OfferingID      uint                 `json:"offering_id"`
	Seats           int                  `json:"seats"`
	PickupLocation  string               `json:"pickup_location"`
	DropoffLocation string               `json:"dropoff_location"`
	OfferedPrice    float64              `json:"offered_price"`
	PaymentMethod   models.PaymentMethod `json:"payment_method"`
}

type UpdateBookingStatusRequest struct {
	Status models.BookingStatus `json:"status"`
	Reason string               `json:"reason"`
}

type EstimateRequest struct {
	FromLocation string `json:"from_location"`
	ToLocation   string `json:"to_location"`
	Seats        int    `json:"seats"`
}

type CreateIntentRequest struct {
	BookingID uint `json:"booking_id"`
}

type ConfirmPaymentRequest struct {
	ExternalRef string `json:"external_ref"`
	MethodRef   string `json:"method_ref"`
}

type CashPaymentRequest struct {
	BookingID uint    `json:"booking_id"`
	Amount    float64 `json:"amount"`
}
