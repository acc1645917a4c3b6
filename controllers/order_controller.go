package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/autoparts-api/services"
	"go.uber.org/zap"
)

// OrderController serves checkout and the admin order screens
type OrderController struct {
	orders *services.OrderService
	logger *zap.Logger
}

// NewOrderController creates an OrderController
func NewOrderController(orders *services.OrderService, logger *zap.Logger) *OrderController {
	return &OrderController{orders: orders, logger: logger}
}

// CreateOrder handles POST /api/orders
func (oc *OrderController) CreateOrder(c *gin.Context) {
	var req services.CreateOrderInput
	if err := bindJSON(c, &req); err != nil {
		respondError(c, oc.logger, err)
		return
	}

	order, err := oc.orders.CreateOrder(c.Request.Context(), req)
	if err != nil {
		respondError(c, oc.logger, err)
		return
	}
	respondSuccess(c, http.StatusCreated, order)
}

// GetOrders handles GET /api/orders?skip=&take=&status=&email=
func (oc *OrderController) GetOrders(c *gin.Context) {
	skip, err := queryInt(c, "skip")
	if err != nil {
		respondError(c, oc.logger, err)
		return
	}
	take, err := queryInt(c, "take")
	if err != nil {
		respondError(c, oc.logger, err)
		return
	}

	page, err := oc.orders.ListOrders(c.Request.Context(), services.OrderListParams{
		Skip:   skip,
		Take:   take,
		Status: c.Query("status"),
		Email:  c.Query("email"),
	})
	if err != nil {
		respondError(c, oc.logger, err)
		return
	}
	respondSuccess(c, http.StatusOK, page)
}

// GetOrder handles GET /api/orders/:id
func (oc *OrderController) GetOrder(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		respondError(c, oc.logger, err)
		return
	}

	order, err := oc.orders.GetOrder(c.Request.Context(), id)
	if err != nil {
		respondError(c, oc.logger, err)
		return
	}
	respondSuccess(c, http.StatusOK, order)
}

// UpdateOrder handles PUT /api/orders/:id
func (oc *OrderController) UpdateOrder(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		respondError(c, oc.logger, err)
		return
	}

	var req services.UpdateOrderInput
	if err := bindJSON(c, &req); err != nil {
		respondError(c, oc.logger, err)
		return
	}

	order, err := oc.orders.UpdateOrder(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, oc.logger, err)
		return
	}
	respondSuccess(c, http.StatusOK, order)
}

// DeleteOrder handles DELETE /api/orders/:id
func (oc *OrderController) DeleteOrder(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		respondError(c, oc.logger, err)
		return
	}

	if err := oc.orders.DeleteOrder(c.Request.Context(), id); err != nil {
		respondError(c, oc.logger, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"id": id})
}
