package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/kendall-kelly/autoparts-api/models"
	"github.com/kendall-kelly/autoparts-api/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProductQuery selects products by vehicle and part. Empty fields match everything.
type ProductQuery struct {
	Make  string `form:"make"`
	Model string `form:"model"`
	Year  string `form:"year"`
	Part  string `form:"part"`
}

// CatalogService answers read-only catalog lookups
type CatalogService struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewCatalogService creates a CatalogService
func NewCatalogService(db *gorm.DB, logger *zap.Logger) *CatalogService {
	return &CatalogService{db: db, logger: logger}
}

// FindProducts resolves make/model/year/part to products with their variants
func (s *CatalogService) FindProducts(ctx context.Context, q ProductQuery) ([]models.Product, error) {
	query := s.db.WithContext(ctx).Model(&models.Product{}).
		Joins("JOIN makes ON makes.id = products.make_id").
		Joins("JOIN car_models ON car_models.id = products.model_id").
		Joins("JOIN years ON years.id = products.year_id").
		Joins("JOIN part_types ON part_types.id = products.part_type_id")

	if v := strings.TrimSpace(q.Make); v != "" {
		query = query.Where("LOWER(makes.name) = ?", strings.ToLower(v))
	}
	if v := strings.TrimSpace(q.Model); v != "" {
		query = query.Where("LOWER(car_models.name) = ?", strings.ToLower(v))
	}
	if v := strings.TrimSpace(q.Year); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			return nil, utils.NewValidationError("INVALID_YEAR", fmt.Sprintf("invalid year %q", v))
		}
		query = query.Where("years.value = ?", year)
	}
	if v := strings.TrimSpace(q.Part); v != "" {
		query = query.Where("LOWER(part_types.name) = ?", strings.ToLower(v))
	}

	var products []models.Product
	err := query.
		Preload("Make").
		Preload("Model").
		Preload("Year").
		Preload("PartType").
		Preload("SubParts").
		Preload("Variants", func(db *gorm.DB) *gorm.DB {
			return db.Order("product_variants.price ASC")
		}).
		Order("products.id ASC").
		Find(&products).Error
	if err != nil {
		return nil, storeErr("failed to query products", err)
	}
	if products == nil {
		products = []models.Product{}
	}
	return products, nil
}

// FindVariantBySKU returns a variant with its product hierarchy loaded
func (s *CatalogService) FindVariantBySKU(ctx context.Context, sku string) (*models.ProductVariant, error) {
	return findVariantBySKU(s.db.WithContext(ctx), sku)
}

// findVariantBySKU runs on db so order transactions can resolve SKUs inside
// their own transaction
func findVariantBySKU(db *gorm.DB, sku string) (*models.ProductVariant, error) {
	var variant models.ProductVariant
	err := db.
		Preload("Product.Make").
		Preload("Product.Model").
		Preload("Product.Year").
		Preload("Product.PartType").
		Where("sku = ?", sku).
		First(&variant).Error
	if isNotFound(err) {
		return nil, utils.NewNotFoundError("SKU_NOT_FOUND", fmt.Sprintf("SKU not found: %s", sku))
	}
	if err != nil {
		return nil, storeErr("failed to load product variant", err)
	}
	return &variant, nil
}
