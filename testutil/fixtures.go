package testutil

import (
	"fmt"
	"testing"

	"github.com/kendall-kelly/autoparts-api/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CatalogFixture holds the rows created by SeedCatalog
type CatalogFixture struct {
	Make     models.Make
	Model    models.CarModel
	Year     models.Year
	PartType models.PartType
	Product  models.Product
	Variants []models.ProductVariant
}

// SeedCatalog creates a 2015 Toyota Camry engine product with two variants,
// SKU-1 (50.00) and SKU-2 (120.00)
func SeedCatalog(t *testing.T, db *gorm.DB) *CatalogFixture {
	t.Helper()

	f := &CatalogFixture{
		Make:     models.Make{Name: "Toyota"},
		Year:     models.Year{Value: 2015},
		PartType: models.PartType{Name: "Engine"},
	}
	mustCreate(t, db, &f.Make)
	f.Model = models.CarModel{MakeID: f.Make.ID, Name: "Camry"}
	mustCreate(t, db, &f.Model)
	mustCreate(t, db, &f.Year)
	mustCreate(t, db, &f.PartType)

	subPart := models.SubPart{Name: "Long Block"}
	mustCreate(t, db, &subPart)

	f.Product = models.Product{
		MakeID:      f.Make.ID,
		ModelID:     f.Model.ID,
		YearID:      f.Year.ID,
		PartTypeID:  f.PartType.ID,
		Description: "2.5L 4 cylinder",
		SubParts:    []models.SubPart{subPart},
	}
	mustCreate(t, db, &f.Product)

	engine := "2.5L"
	miles := "85,000"
	f.Variants = []models.ProductVariant{
		{ProductID: f.Product.ID, SKU: "SKU-1", Price: decimal.RequireFromString("50.00"), Specification: &engine, Miles: &miles, InStock: true},
		{ProductID: f.Product.ID, SKU: "SKU-2", Price: decimal.RequireFromString("120.00"), InStock: true},
	}
	for i := range f.Variants {
		mustCreate(t, db, &f.Variants[i])
	}
	return f
}

// CountRows returns the number of rows in model's table, ignoring soft deletes
func CountRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()

	var n int64
	if err := db.Unscoped().Model(model).Count(&n).Error; err != nil {
		t.Fatalf("failed to count rows: %v", err)
	}
	return n
}

func mustCreate(t *testing.T, db *gorm.DB, value interface{}) {
	t.Helper()
	if err := db.Create(value).Error; err != nil {
		t.Fatalf("failed to seed %T: %v", value, err)
	}
}

// CheckoutJSON is a storefront checkout body for two units of SKU-1 paid by card
func CheckoutJSON(orderNumber, email string) string {
	return fmt.Sprintf(`{
	"orderNumber": %q,
	"customerInfo": {"email": %q, "fullName": "Ana Bell"},
	"billingInfo": {"firstName": "Ana", "lastName": "Bell", "address": "1 Main St", "city": "Austin", "state": "TX", "zipCode": "73301"},
	"shippingInfo": {"firstName": "Ana", "lastName": "Bell", "address": "1 Main St", "city": "Austin", "state": "TX", "zipCode": "73301"},
	"cartItems": [{"id": "SKU-1", "quantity": 2, "price": 50}],
	"paymentInfo": {"cardData": {"cardHolderName": "Ana Bell", "cardNumber": "4242424242424242", "expirationDate": "04/27", "cvv": "123"}},
	"totalAmount": 100,
	"subtotal": 100
}`, orderNumber, email)
}
