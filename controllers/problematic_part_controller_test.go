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

func setupProblematicPartRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	router, db := setupOrderRouter(t)
	logger := testutil.NewTestLogger()

	svc := services.NewProblematicPartService(db, services.NewNotifier(logger, nil, ""), logger)
	pc := NewProblematicPartController(svc, logger)

	router.GET("/api/problematic-parts", pc.List)
	router.GET("/api/problematic-parts/order/:orderId", pc.GetByOrder)
	router.GET("/api/problematic-parts/:id", pc.Get)
	router.POST("/api/problematic-parts", pc.Create)
	router.PUT("/api/problematic-parts/:id", pc.Update)
	router.DELETE("/api/problematic-parts/:id", pc.Delete)
	return router, db
}

func TestProblematicPartController_Lifecycle(t *testing.T) {
	router, db := setupProblematicPartRouter(t)
	order := createOrderViaAPI(t, router, "ORD-1", "ana@example.com")

	body := fmt.Sprintf(`{"orderId": %d, "problemType": "DEFECTIVE", "requestFromCustomer": "Replacement",
		"defectDescription": "knocks at idle", "replacement": {"yardName": "East Yard", "replacementPrice": 200}}`, order.ID)
	w := performRequest(router, http.MethodPost, "/api/problematic-parts", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var part models.ProblematicPart
	decodeData(t, w, &part)
	require.NotNil(t, part.Replacement)

	// posting again for the same order updates the existing record
	w = performRequest(router, http.MethodPost, "/api/problematic-parts",
		fmt.Sprintf(`{"orderId": %d, "problemType": "defective", "mechanicReport": "rod bearing"}`, order.ID))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, int64(1), testutil.CountRows(t, db, &models.ProblematicPart{}))

	w = performRequest(router, http.MethodGet, fmt.Sprintf("/api/problematic-parts/order/%d", order.ID), "")
	require.Equal(t, http.StatusOK, w.Code)
	var byOrder models.ProblematicPart
	decodeData(t, w, &byOrder)
	assert.Equal(t, part.ID, byOrder.ID)
	require.NotNil(t, byOrder.MechanicReport)

	path := fmt.Sprintf("/api/problematic-parts/%d", part.ID)
	w = performRequest(router, http.MethodPut, path, `{"requestFromCustomer": "refund", "refundAmount": "120.50"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var refunded models.ProblematicPart
	decodeData(t, w, &refunded)
	assert.Nil(t, refunded.Replacement)
	assert.Equal(t, int64(0), testutil.CountRows(t, db, &models.ProblematicPartReplacement{}))

	w = performRequest(router, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusNotFound, performRequest(router, http.MethodGet, path, "").Code)
}

func TestProblematicPartController_Errors(t *testing.T) {
	router, _ := setupProblematicPartRouter(t)
	order := createOrderViaAPI(t, router, "ORD-1", "ana@example.com")

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"missing order id", http.MethodPost, "/api/problematic-parts", `{"problemType": "DAMAGED"}`, http.StatusBadRequest, "MISSING_FIELDS"},
		{"unknown order", http.MethodPost, "/api/problematic-parts", `{"orderId": 77, "problemType": "DAMAGED"}`, http.StatusNotFound, "ORDER_NOT_FOUND"},
		{"bad problem type", http.MethodPost, "/api/problematic-parts", fmt.Sprintf(`{"orderId": %d, "problemType": "LOST"}`, order.ID), http.StatusBadRequest, "INVALID_ENUM"},
		{"missing part", http.MethodGet, "/api/problematic-parts/55", "", http.StatusNotFound, ""},
		{"bad id", http.MethodPut, "/api/problematic-parts/abc", `{}`, http.StatusBadRequest, "INVALID_ID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(router, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, decodeEnvelope(t, w).Error.Code)
			}
		})
	}
}

func TestProblematicPartController_EmptyList(t *testing.T) {
	router, _ := setupProblematicPartRouter(t)

	w := performRequest(router, http.MethodGet, "/api/problematic-parts?skip=0&take=10", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success": true, "data": {"items": [], "total": 0, "page": 1, "pageSize": 10, "totalPages": 0}}`, w.Body.String())
}
