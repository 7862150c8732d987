package models

import "time"

type NotificationCategory string

const (
	CategoryBookingCreated   NotificationCategory = "BOOKING_CREATED"
	CategoryBookingUpdated   NotificationCategory = "BOOKING_UPDATED"
	CategoryBookingCancelled NotificationCategory = "BOOKING_CANCELLED"
	CategoryRideCancelled    NotificationCategory = "RIDE_CANCELLED"
	CategoryRideCompleted    NotificationCategory = "RIDE_COMPLETED"
	CategoryPaymentReceived  NotificationCategory = "PAYMENT_RECEIVED"
)

type Notification struct {
	ID             uint                 `gorm:"primaryKey" json:"id"`
	RecipientEmail string               `gorm:"not null;index" json:"recipient_email"`
	Message        string               `gorm:"not null" json:"message"`
	Category       NotificationCategory `gorm:"type:varchar(30);not null" json:"category"`
	Read           bool                 `gorm:"not null;default:false" json:"read"`
	CreatedAt      time.Time            `json:"created_at"`
}
