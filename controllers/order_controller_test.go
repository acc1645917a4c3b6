package controllers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/autoparts-api/models"
	"github.com/kendall-kelly/autoparts-api/services"
	"github.com/kendall-kelly/autoparts-api/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupOrderRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db := testutil.NewTestDB(t)
	testutil.SeedCatalog(t, db)
	logger := testutil.NewTestLogger()

	svc := services.NewOrderService(db, services.NewNotifier(logger, nil, ""), logger)
	oc := NewOrderController(svc, logger)

	router := gin.New()
	router.POST("/api/orders", oc.CreateOrder)
	router.GET("/api/orders", oc.GetOrders)
	router.GET("/api/orders/:id", oc.GetOrder)
	router.PUT("/api/orders/:id", oc.UpdateOrder)
	router.DELETE("/api/orders/:id", oc.DeleteOrder)
	return router, db
}

func createOrderViaAPI(t *testing.T, router *gin.Engine, orderNumber, email string) models.Order {
	t.Helper()
	w := performRequest(router, http.MethodPost, "/api/orders", testutil.CheckoutJSON(orderNumber, email))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var order models.Order
	decodeData(t, w, &order)
	return order
}

func TestCreateOrder(t *testing.T) {
	router, db := setupOrderRouter(t)

	order := createOrderViaAPI(t, router, "ORD-1", "ana@example.com")
	assert.Equal(t, "ORD-1", order.OrderNumber)
	assert.Equal(t, models.OrderStatusPaid, order.Status)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "100", order.Items[0].LineTotal.String())
	assert.Equal(t, "Toyota", order.Items[0].MakeName)
	require.Len(t, order.Payments, 1)
	assert.Equal(t, models.PaymentStatusSucceeded, order.Payments[0].Status)
	require.NotNil(t, order.Customer)
	assert.Equal(t, "ana@example.com", order.Customer.Email)
	assert.NotContains(t, fmt.Sprint(order.Payments[0]), "4242424242424242")

	assert.Equal(t, int64(1), testutil.CountRows(t, db, &models.Order{}))
}

func TestCreateOrder_Failures(t *testing.T) {
	router, db := setupOrderRouter(t)
	createOrderViaAPI(t, router, "ORD-1", "ana@example.com")

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{
			name:       "missing fields",
			body:       `{"orderNumber": "ORD-2"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "MISSING_FIELDS",
		},
		{
			name:       "unknown field",
			body:       `{"orderNumber": "ORD-2", "discountCode": "FREE"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_JSON",
		},
		{
			name:       "duplicate order number",
			body:       testutil.CheckoutJSON("ORD-1", "ana@example.com"),
			wantStatus: http.StatusConflict,
			wantCode:   "DUPLICATE",
		},
		{
			name: "unknown sku",
			body: `{"orderNumber": "ORD-3", "customerInfo": {"email": "x@example.com"}, "billingInfo": {}, "shippingInfo": {},
				"cartItems": [{"id": "SKU-404", "quantity": 1}], "paymentInfo": {}, "totalAmount": 1, "subtotal": 1}`,
			wantStatus: http.StatusNotFound,
			wantCode:   "SKU_NOT_FOUND",
		},
		{
			name: "negative quantity",
			body: `{"orderNumber": "ORD-4", "customerInfo": {"email": "x@example.com"}, "billingInfo": {}, "shippingInfo": {},
				"cartItems": [{"id": "SKU-1", "quantity": -2}], "paymentInfo": {}, "totalAmount": 1, "subtotal": 1}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
		},
		{
			name: "bad email",
			body: `{"orderNumber": "ORD-5", "customerInfo": {"email": "not-an-email"}, "billingInfo": {}, "shippingInfo": {},
				"cartItems": [{"id": "SKU-1", "quantity": 1}], "paymentInfo": {}, "totalAmount": 1, "subtotal": 1}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(router, http.MethodPost, "/api/orders", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			assert.Equal(t, tt.wantCode, decodeEnvelope(t, w).Error.Code)
		})
	}

	assert.Equal(t, int64(1), testutil.CountRows(t, db, &models.Order{}))
	assert.Equal(t, int64(1), testutil.CountRows(t, db, &models.Payment{}))
}

func TestGetOrder(t *testing.T) {
	router, _ := setupOrderRouter(t)
	order := createOrderViaAPI(t, router, "ORD-1", "ana@example.com")

	w := performRequest(router, http.MethodGet, fmt.Sprintf("/api/orders/%d", order.ID), "")
	require.Equal(t, http.StatusOK, w.Code)
	var got models.Order
	decodeData(t, w, &got)
	assert.Equal(t, order.ID, got.ID)
	assert.NotNil(t, got.Address)

	w = performRequest(router, http.MethodGet, "/api/orders/999", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "ORDER_NOT_FOUND", decodeEnvelope(t, w).Error.Code)
}

func TestGetOrders(t *testing.T) {
	router, _ := setupOrderRouter(t)
	for i := 1; i <= 3; i++ {
		createOrderViaAPI(t, router, fmt.Sprintf("ORD-%d", i), fmt.Sprintf("buyer%d@example.com", i))
	}

	w := performRequest(router, http.MethodGet, "/api/orders?take=2", "")
	require.Equal(t, http.StatusOK, w.Code)
	var page services.Page[models.Order]
	decodeData(t, w, &page)
	assert.Equal(t, int64(3), page.Total)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, "ORD-3", page.Items[0].OrderNumber)

	w = performRequest(router, http.MethodGet, "/api/orders?email=BUYER2@example.com", "")
	decodeData(t, w, &page)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "ORD-2", page.Items[0].OrderNumber)

	w = performRequest(router, http.MethodGet, "/api/orders?status=lost", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = performRequest(router, http.MethodGet, "/api/orders?skip=x", "")
	assert.Equal(t, "INVALID_QUERY", decodeEnvelope(t, w).Error.Code)
}

func TestUpdateOrder(t *testing.T) {
	router, _ := setupOrderRouter(t)
	order := createOrderViaAPI(t, router, "ORD-1", "ana@example.com")
	path := fmt.Sprintf("/api/orders/%d", order.ID)

	w := performRequest(router, http.MethodPut, path, `{
		"status": "po sent",
		"cartItems": [{"id": "SKU-1", "quantity": 1}, {"id": "SKU-2", "quantity": 1}],
		"paymentInfo": [],
		"yardInfo": {"yardName": "Pick-n-Pull", "yardPrice": "350"}
	}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated models.Order
	decodeData(t, w, &updated)
	assert.Equal(t, models.OrderStatusPOSent, updated.Status)
	assert.Len(t, updated.Items, 2)
	assert.Empty(t, updated.Payments)
	require.NotNil(t, updated.YardInfo)

	w = performRequest(router, http.MethodPut, path, `{"status": "misplaced"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_ENUM", decodeEnvelope(t, w).Error.Code)

	w = performRequest(router, http.MethodPut, "/api/orders/999", `{"notes": "hello"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteOrder(t *testing.T) {
	router, _ := setupOrderRouter(t)
	order := createOrderViaAPI(t, router, "ORD-1", "ana@example.com")
	path := fmt.Sprintf("/api/orders/%d", order.ID)

	assert.Equal(t, http.StatusOK, performRequest(router, http.MethodDelete, path, "").Code)
	assert.Equal(t, http.StatusNotFound, performRequest(router, http.MethodGet, path, "").Code)
	assert.Equal(t, http.StatusNotFound, performRequest(router, http.MethodDelete, path, "").Code)
}
