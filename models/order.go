package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Order is the root aggregate of a sale
type Order struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	OrderNumber string      `gorm:"uniqueIndex;not null" json:"orderNumber"`
	Status      OrderStatus `gorm:"not null;default:'PENDING';index" json:"status"`
	Source      OrderSource `gorm:"not null;default:'STOREFRONT'" json:"source"`

	// Money
	Subtotal      decimal.Decimal     `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	TotalAmount   decimal.Decimal     `gorm:"type:decimal(12,2);not null" json:"totalAmount"`
	Taxes         decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"taxes"`
	ShippingCost  decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"shippingCost"`
	HandlingFee   decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"handlingFee"`
	ProcessingFee decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"processingFee"`
	CorePrice     decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"corePrice"`

	Warranty       *Warranty `json:"warranty"`
	Notes          *string   `gorm:"type:text" json:"notes"`
	CarrierName    *string   `json:"carrierName"`
	TrackingNumber *string   `json:"trackingNumber"`

	CustomerNotes datatypes.JSON `json:"customerNotes"`
	YardNotes     datatypes.JSON `json:"yardNotes"`
	BillingInfo   datatypes.JSON `json:"billingInfo"`
	ShippingInfo  datatypes.JSON `json:"shippingInfo"`

	OrderDate          *time.Time `json:"orderDate"`
	InvoiceSentAt      *time.Time `json:"invoiceSentAt"`
	InvoiceConfirmedAt *time.Time `json:"invoiceConfirmedAt"`
	POSentAt           *time.Time `gorm:"column:po_sent_at" json:"poSentAt"`
	POConfirmedAt      *time.Time `gorm:"column:po_confirmed_at" json:"poConfirmedAt"`

	CustomerID  uint          `gorm:"not null;index" json:"customerId"`
	Customer    *Customer     `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	AddressID   *uint         `gorm:"uniqueIndex" json:"addressId"`
	Address     *Address      `gorm:"foreignKey:AddressID" json:"address,omitempty"`
	Items       []OrderItem   `gorm:"foreignKey:OrderID" json:"items,omitempty"`
	Payments    []Payment     `gorm:"foreignKey:OrderID" json:"payments,omitempty"`
	YardInfo    *YardInfo     `gorm:"foreignKey:OrderID" json:"yardInfo,omitempty"`
	YardHistory []YardHistory `gorm:"foreignKey:OrderID" json:"yardHistory,omitempty"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// OrderItem is a line item. Catalog names are copied at write time so the
// order stays readable when the catalog changes.
type OrderItem struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	OrderID          uint            `gorm:"not null;index" json:"orderId"`
	SKU              string          `gorm:"column:sku;not null;index" json:"sku"`
	ProductVariantID *uint           `gorm:"index" json:"productVariantId"`
	Name             string          `json:"name"`
	Quantity         int             `gorm:"not null" json:"quantity"`
	UnitPrice        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unitPrice"`
	LineTotal        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"lineTotal"`
	MakeName         string          `json:"makeName"`
	ModelName        string          `json:"modelName"`
	YearName         string          `json:"yearName"`
	PartName         string          `json:"partName"`
	Specification    *string         `json:"specification"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// TableName specifies the table name for the OrderItem model
func (OrderItem) TableName() string {
	return "order_items"
}
