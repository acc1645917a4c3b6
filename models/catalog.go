package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Make is a vehicle manufacturer
type Make struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;not null" json:"name"`
}

// TableName specifies the table name for the Make model
func (Make) TableName() string {
	return "makes"
}

// CarModel is a vehicle model under a make
type CarModel struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	MakeID uint   `gorm:"not null;index" json:"makeId"`
	Name   string `gorm:"not null" json:"name"`
}

// TableName specifies the table name for the CarModel model
func (CarModel) TableName() string {
	return "car_models"
}

// Year is a model year
type Year struct {
	ID    uint `gorm:"primaryKey" json:"id"`
	Value int  `gorm:"uniqueIndex;not null" json:"value"`
}

// TableName specifies the table name for the Year model
func (Year) TableName() string {
	return "years"
}

// PartType is the kind of part a product is (engine, transmission, ...)
type PartType struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;not null" json:"name"`
}

// TableName specifies the table name for the PartType model
func (PartType) TableName() string {
	return "part_types"
}

// SubPart is a tag attached to products
type SubPart struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"uniqueIndex;not null" json:"name"`
}

// TableName specifies the table name for the SubPart model
func (SubPart) TableName() string {
	return "sub_parts"
}

// Product groups variants for one make/model/year/part combination
type Product struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	MakeID      uint             `gorm:"not null;index" json:"makeId"`
	Make        Make             `gorm:"foreignKey:MakeID" json:"make"`
	ModelID     uint             `gorm:"not null;index" json:"modelId"`
	Model       CarModel         `gorm:"foreignKey:ModelID" json:"model"`
	YearID      uint             `gorm:"not null;index" json:"yearId"`
	Year        Year             `gorm:"foreignKey:YearID" json:"year"`
	PartTypeID  uint             `gorm:"not null;index" json:"partTypeId"`
	PartType    PartType         `gorm:"foreignKey:PartTypeID" json:"partType"`
	Description string           `json:"description"`
	SubParts    []SubPart        `gorm:"many2many:product_sub_parts" json:"subParts,omitempty"`
	Variants    []ProductVariant `gorm:"foreignKey:ProductID" json:"variants,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// TableName specifies the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// ProductVariant is a priced, mileage-banded SKU under a product
type ProductVariant struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	ProductID     uint            `gorm:"not null;index" json:"productId"`
	Product       *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	SKU           string          `gorm:"column:sku;uniqueIndex;not null" json:"sku"`
	Price         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Miles         *string         `json:"miles"`
	Specification *string         `json:"specification"`
	InStock       bool            `gorm:"not null;default:true" json:"inStock"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// TableName specifies the table name for the ProductVariant model
func (ProductVariant) TableName() string {
	return "product_variants"
}
