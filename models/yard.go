package models

import (
	"time"

	"gorm.io/datatypes"
)

// YardInfo is the salvage yard currently sourcing the part for an order
type YardInfo struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	OrderID          uint           `gorm:"not null;uniqueIndex" json:"orderId"`
	YardName         string         `json:"yardName"`
	YardAddress      string         `json:"yardAddress"`
	YardPhone        string         `json:"yardPhone"`
	YardEmail        string         `json:"yardEmail"`
	ContactName      string         `json:"contactName"`
	YardPrice        float64        `json:"yardPrice"`
	YardMiles        float64        `json:"yardMiles"`
	YardShippingCost float64        `json:"yardShippingCost"`
	YardShippingType string         `json:"yardShippingType"`
	YardWarranty     string         `json:"yardWarranty"`
	ShippingDetails  datatypes.JSON `json:"shippingDetails"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
}

// TableName specifies the table name for the YardInfo model
func (YardInfo) TableName() string {
	return "yard_infos"
}

// YardHistory is an immutable snapshot of a replaced YardInfo
type YardHistory struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	OrderID          uint      `gorm:"not null;index" json:"orderId"`
	YardName         string    `json:"yardName"`
	YardPhone        string    `json:"yardPhone"`
	YardEmail        string    `json:"yardEmail"`
	ContactName      string    `json:"contactName"`
	YardPrice        float64   `json:"yardPrice"`
	YardMiles        float64   `json:"yardMiles"`
	YardShippingCost float64   `json:"yardShippingCost"`
	Reason           string    `gorm:"not null" json:"reason"`
	CreatedAt        time.Time `json:"createdAt"`
}

// TableName specifies the table name for the YardHistory model
func (YardHistory) TableName() string {
	return "yard_histories"
}
