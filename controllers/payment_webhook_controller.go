package controllers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/autoparts-api/services"
	"github.com/kendall-kelly/autoparts-api/utils"
	"go.uber.org/zap"
)

// PaymentWebhookController ingests payment provider events
type PaymentWebhookController struct {
	webhooks *services.PaymentWebhookService
	logger   *zap.Logger
}

// NewPaymentWebhookController creates a PaymentWebhookController
func NewPaymentWebhookController(webhooks *services.PaymentWebhookService, logger *zap.Logger) *PaymentWebhookController {
	return &PaymentWebhookController{webhooks: webhooks, logger: logger}
}

// Receive handles POST /api/payments/webhook?provider=
func (pc *PaymentWebhookController) Receive(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		respondError(c, pc.logger, utils.NewValidationError("INVALID_PAYLOAD", "Could not read request body"))
		return
	}

	event, err := pc.webhooks.Ingest(c.Request.Context(), c.Query("provider"), body)
	if err != nil {
		respondError(c, pc.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"id":      event.ID,
		"eventId": event.EventID,
	})
}
