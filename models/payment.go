package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment is one settlement attempt against an order. Raw card numbers are
// never stored; only the last four digits survive.
type Payment struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	OrderID           uint            `gorm:"not null;index" json:"orderId"`
	PaymentMethod     *string         `json:"paymentMethod"`
	CardHolderName    *string         `json:"cardHolderName"`
	CardBrand         *string         `json:"cardBrand"`
	CardLast4         *string         `gorm:"column:card_last4" json:"cardLast4"`
	CardExpiry        *time.Time      `json:"cardExpiry"`
	AltCardHolderName *string         `json:"altCardHolderName"`
	AltCardBrand      *string         `json:"altCardBrand"`
	AltCardLast4      *string         `gorm:"column:alt_card_last4" json:"altCardLast4"`
	AltCardExpiry     *time.Time      `json:"altCardExpiry"`
	Status            PaymentStatus   `gorm:"not null;default:'PENDING'" json:"status"`
	Amount            decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// TableName specifies the table name for the Payment model
func (Payment) TableName() string {
	return "payments"
}
