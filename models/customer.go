package models

import (
	"time"

	"gorm.io/gorm"
)

// Customer is the buyer identity, keyed by email
type Customer struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Email           string         `gorm:"uniqueIndex;not null" json:"email"`
	FullName        string         `gorm:"not null" json:"fullName"`
	Phone           *string        `json:"phone"`
	PasswordHash    *string        `json:"-"`
	OTPHash         *string        `json:"-"`
	OTPExpiresAt    *time.Time     `json:"-"`
	EmailVerifiedAt *time.Time     `json:"emailVerifiedAt"`
	GoogleID        *string        `gorm:"uniqueIndex" json:"-"`
	Orders          []Order        `gorm:"foreignKey:CustomerID" json:"orders,omitempty"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Customer model
func (Customer) TableName() string {
	return "customers"
}

// IsVerified reports whether the customer confirmed their email
func (c *Customer) IsVerified() bool {
	return c.EmailVerifiedAt != nil
}
