package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// ProblematicPart tracks the single post-sale issue raised on an order.
// Damaged, defective and wrong-product issues each use their own subset of
// the optional columns.
type ProblematicPart struct {
	ID                  uint                `gorm:"primaryKey" json:"id"`
	OrderID             uint                `gorm:"not null;index" json:"orderId"`
	Order               *Order              `gorm:"foreignKey:OrderID" json:"order,omitempty"`
	ProblemType         ProblemType         `gorm:"not null;index" json:"problemType"`
	RequestFromCustomer CustomerRequest     `json:"requestFromCustomer"`
	Description         *string             `gorm:"type:text" json:"description"`
	Photos              datatypes.JSON      `json:"photos"`
	ReturnShipping      *string             `json:"returnShipping"`
	RefundAmount        decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"refundAmount"`

	// Damaged
	DamageDescription *string `gorm:"type:text" json:"damageDescription"`
	DamageLocation    *string `json:"damageLocation"`
	CarrierClaimNo    *string `json:"carrierClaimNo"`

	// Defective
	DefectDescription *string `gorm:"type:text" json:"defectDescription"`
	DefectCategory    *string `json:"defectCategory"`
	MechanicReport    *string `gorm:"type:text" json:"mechanicReport"`

	// Wrong product
	ReceivedPartDescription *string `gorm:"type:text" json:"receivedPartDescription"`
	ExpectedPartDescription *string `gorm:"type:text" json:"expectedPartDescription"`

	Replacement *ProblematicPartReplacement `gorm:"foreignKey:ProblematicPartID" json:"replacement,omitempty"`
	CreatedAt   time.Time                   `json:"createdAt"`
	UpdatedAt   time.Time                   `json:"updatedAt"`
}

// TableName specifies the table name for the ProblematicPart model
func (ProblematicPart) TableName() string {
	return "problematic_parts"
}

// ProblematicPartReplacement is the sourcing plan for a replacement part.
// It only exists while the customer asks for a replacement.
type ProblematicPartReplacement struct {
	ID                uint            `gorm:"primaryKey" json:"id"`
	ProblematicPartID uint            `gorm:"not null;uniqueIndex" json:"problematicPartId"`
	YardName          *string         `json:"yardName"`
	YardPhone         *string         `json:"yardPhone"`
	YardAddress       *string         `json:"yardAddress"`
	Notes             *string         `gorm:"type:text" json:"notes"`
	ReplacementPrice  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"replacementPrice"`
	Taxes             decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"taxes"`
	Handling          decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"handling"`
	Processing        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"processing"`
	CorePrice         decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"corePrice"`
	YardCost          decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"yardCost"`
	TotalBuy          decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"totalBuy"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// TableName specifies the table name for the ProblematicPartReplacement model
func (ProblematicPartReplacement) TableName() string {
	return "problematic_part_replacements"
}

// RecomputeTotalBuy sets TotalBuy to the sum of every cost component
func (r *ProblematicPartReplacement) RecomputeTotalBuy() {
	r.TotalBuy = r.ReplacementPrice.
		Add(r.Taxes).
		Add(r.Handling).
		Add(r.Processing).
		Add(r.CorePrice).
		Add(r.YardCost)
}
