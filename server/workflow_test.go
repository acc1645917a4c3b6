package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/kendall-kelly/autoparts-api/models"
	"github.com/kendall-kelly/autoparts-api/testutil"
)

// TestCheckoutToProblemWorkflow drives a real HTTP server through the
// storefront checkout, the dashboard edits and a problem report.
func (s *RouterSuite) TestCheckoutToProblemWorkflow() {
	srv := httptest.NewServer(s.router)
	defer srv.Close()
	admin := testutil.AdminToken(s.T(), s.cfg)

	call := func(method, path, body, token string) (int, json.RawMessage) {
		var reader io.Reader
		if body != "" {
			reader = strings.NewReader(body)
		}
		req, err := http.NewRequest(method, srv.URL+path, reader)
		s.Require().NoError(err)
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err := http.DefaultClient.Do(req)
		s.Require().NoError(err)
		defer resp.Body.Close()

		var env struct {
			Success bool            `json:"success"`
			Data    json.RawMessage `json:"data"`
		}
		s.Require().NoError(json.NewDecoder(resp.Body).Decode(&env))
		return resp.StatusCode, env.Data
	}

	status, data := call(http.MethodPost, "/api/orders", testutil.CheckoutJSON("ORD-100", "ana@example.com"), "")
	s.Require().Equal(http.StatusCreated, status)
	var order models.Order
	s.Require().NoError(json.Unmarshal(data, &order))
	s.NotZero(order.ID)

	orderPath := fmt.Sprintf("/api/orders/%d", order.ID)
	status, data = call(http.MethodPut, orderPath, `{"status": "po sent", "notes": "called yard"}`, admin)
	s.Require().Equal(http.StatusOK, status)
	var updated models.Order
	s.Require().NoError(json.Unmarshal(data, &updated))
	s.Equal(models.OrderStatusPOSent, updated.Status)

	status, _ = call(http.MethodGet, "/api/orders?status=po%20sent&email=ana@example.com", "", admin)
	s.Equal(http.StatusOK, status)

	part := fmt.Sprintf(`{"orderId": %d, "problemType": "DAMAGED", "damageDescription": "cracked housing"}`, order.ID)
	status, data = call(http.MethodPost, "/api/problematic-parts", part, admin)
	s.Require().Equal(http.StatusCreated, status)
	var created models.ProblematicPart
	s.Require().NoError(json.Unmarshal(data, &created))
	s.Equal(order.ID, created.OrderID)

	status, _ = call(http.MethodGet, fmt.Sprintf("/api/problematic-parts/order/%d", order.ID), "", admin)
	s.Equal(http.StatusOK, status)

	status, _ = call(http.MethodDelete, orderPath, "", admin)
	s.Equal(http.StatusOK, status)
	status, _ = call(http.MethodGet, orderPath, "", admin)
	s.Equal(http.StatusNotFound, status)
}
