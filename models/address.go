package models

import "time"

// AddressLines is one postal address. It is embedded twice in Address
// with billing_ and shipping_ column prefixes.
type AddressLines struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Company    string `json:"company"`
	Street     string `json:"address"`
	Apartment  string `json:"apartment"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"zipCode"`
	Country    string `json:"country"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
}

// Address is the billing/shipping snapshot owned by a single order
type Address struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	AddressType AddressType  `gorm:"not null;default:'UNKNOWN'" json:"addressType"`
	CompanyName *string      `json:"companyName"`
	Billing     AddressLines `gorm:"embedded;embeddedPrefix:billing_" json:"billing"`
	Shipping    AddressLines `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// TableName specifies the table name for the Address model
func (Address) TableName() string {
	return "addresses"
}
