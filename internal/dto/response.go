package dto

import (
	"time"

	"github.com/Pranav-6954/Carpooling/internal/models"
)

type OfferingResponse struct {
	ID                 uint                  `json:"id"`
	DriverEmail        string                `json:"driver_email"`
	DriverName         string                `json:"driver_name,omitempty"`
	FromLocation       string                `json:"from_location"`
	ToLocation         string                `json:"to_location"`
	Route              string                `json:"route,omitempty"`
	TravelDate         string                `json:"travel_date"`
	PricePerSeat       float64               `json:"price_per_seat"`
	Capacity           int                   `json:"capacity"`
	AvailableSeats     int                   `json:"available_seats"`
	VehicleType        string                `json:"vehicle_type,omitempty"`
	ImageURL           string                `json:"image_url,omitempty"`
	Status             models.OfferingStatus `json:"status"`
	CancellationReason *string               `json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time             `json:"created_at"`
}

type BookingResponse struct {
	ID                 uint                        `json:"id"`
	OfferingID         uint                        `json:"offering_id"`
	PassengerEmail     string                      `json:"passenger_email"`
	Seats              int                         `json:"seats"`
	PickupLocation     string                      `json:"pickup_location"`
	DropoffLocation    string                      `json:"dropoff_location"`
	DistanceKm         float64                     `json:"distance_km"`
	TotalPrice         float64                     `json:"total_price"`
	PaymentMethod      models.PaymentMethod        `json:"payment_method"`
	PaymentStatus      models.BookingPaymentStatus `json:"payment_status"`
	Status             models.BookingStatus        `json:"status"`
	CancellationReason *string                     `json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time                   `json:"created_at"`
	Offering           *OfferingResponse           `json:"offering,omitempty"`
}

type PaymentResponse struct {
	ID          uint                 `json:"id"`
	BookingID   uint                 `json:"booking_id"`
	PayerEmail  string               `json:"payer_email"`
	Amount      float64              `json:"amount"`
	ExternalRef string               `json:"external_ref"`
	Method      string               `json:"method"`
	Status      models.PaymentStatus `json:"status"`
	CreatedAt   time.Time            `json:"created_at"`
}

type PaymentIntentResponse struct {
	Payment      PaymentResponse `json:"payment"`
	ClientSecret string          `json:"client_secret,omitempty"`
}

type NotificationResponse struct {
	ID        uint                        `json:"id"`
	Message   string                      `json:"message"`
	Category  models.NotificationCategory `json:"category"`
	Read      bool                        `json:"read"`
	CreatedAt time.Time                   `json:"created_at"`
}

type FixStuckResponse struct {
	Fixed int `json:"fixed"`
}

type ExpiredCountResponse struct {
	Expired int64 `json:"expired"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}

func ToOfferingResponse(o *models.Offering) OfferingResponse {
	return OfferingResponse{
		ID:                 o.ID,
		DriverEmail:        o.DriverEmail,
		DriverName:         o.DriverName,
		FromLocation:       o.FromLocation,
		ToLocation:         o.ToLocation,
		Route:              o.Route,
		TravelDate:         o.TravelDate,
		PricePerSeat:       o.PricePerSeat,
		Capacity:           o.Capacity,
		AvailableSeats:     o.AvailableSeats,
		VehicleType:        o.VehicleType,
		ImageURL:           o.ImageURL,
		Status:             o.Status,
		CancellationReason: o.CancellationReason,
		CreatedAt:          o.CreatedAt,
	}
}

func ToBookingResponse(b *models.Booking) BookingResponse {
	resp := BookingResponse{
		ID:                 b.ID,
		OfferingID:         b.OfferingID,
		PassengerEmail:     b.PassengerEmail,
		Seats:              b.Seats,
		PickupLocation:     b.PickupLocation,
		DropoffLocation:    b.DropoffLocation,
		DistanceKm:         b.DistanceKm,
		TotalPrice:         b.TotalPrice,
		PaymentMethod:      b.PaymentMethod,
		PaymentStatus:      b.PaymentStatus,
		Status:             b.Status,
		CancellationReason: b.CancellationReason,
		CreatedAt:          b.CreatedAt,
	}
	if b.Offering != nil {
		o := ToOfferingResponse(b.Offering)
		resp.Offering = &o
	}
	return resp
}

func ToPaymentResponse(p *models.Payment) PaymentResponse {
	method := "online"
	if p.IsCash() {
		method = "cash"
	}
	return PaymentResponse{
		ID:          p.ID,
		BookingID:   p.BookingID,
		PayerEmail:  p.PayerEmail,
		Amount:      p.Amount,
		ExternalRef: p.ExternalRef,
		Method:      method,
		Status:      p.Status,
		CreatedAt:   p.CreatedAt,
	}
}

func ToNotificationResponse(n *models.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Message:   n.Message,
		Category:  n.Category,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}
