package models

import (
	"strings"
	"time"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentConfirmed PaymentStatus = "CONFIRMED"
)

// CashRefPrefix tags payments settled offline. Reporting separates cash from
// online volume by this prefix, not a separate flag.
const CashRefPrefix = "CASH_"

type Payment struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	BookingID   uint          `gorm:"index" json:"booking_id"`
	PayerEmail  string        `gorm:"not null;index" json:"payer_email"`
	Amount      float64       `gorm:"not null" json:"amount"`
	ExternalRef string        `gorm:"uniqueIndex;not null" json:"external_ref"`
	MethodRef   string        `json:"method_ref,omitempty"`
	Status      PaymentStatus `gorm:"type:varchar(15);not null" json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

func (p *Payment) IsCash() bool {
	return strings.HasPrefix(p.ExternalRef, CashRefPrefix)
}
