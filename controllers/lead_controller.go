package controllers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/autoparts-api/services"
	"github.com/kendall-kelly/autoparts-api/utils"
	"go.uber.org/zap"
)

// maxWebhookBody caps provider webhook bodies
const maxWebhookBody = 1 << 20

// SyncLeadsRequest is the body of POST /api/leads/sync
type SyncLeadsRequest struct {
	FormID string `json:"formId" binding:"required"`
}

// LeadController serves the Meta lead-ads webhook and the lead screens
type LeadController struct {
	leads  *services.LeadService
	logger *zap.Logger
}

// NewLeadController creates a LeadController
func NewLeadController(leads *services.LeadService, logger *zap.Logger) *LeadController {
	return &LeadController{leads: leads, logger: logger}
}

// VerifyWebhook handles GET /api/webhook, the provider's subscription handshake
func (lc *LeadController) VerifyWebhook(c *gin.Context) {
	challenge, err := lc.leads.VerifySubscription(
		c.Query("hub.mode"),
		c.Query("hub.verify_token"),
		c.Query("hub.challenge"),
	)
	if err != nil {
		respondError(c, lc.logger, err)
		return
	}
	c.String(http.StatusOK, challenge)
}

// ReceiveWebhook handles POST /api/webhook
func (lc *LeadController) ReceiveWebhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		respondError(c, lc.logger, utils.NewValidationError("INVALID_PAYLOAD", "Could not read request body"))
		return
	}

	if _, err := lc.leads.ProcessWebhook(c.Request.Context(), body); err != nil {
		respondError(c, lc.logger, err)
		return
	}
	c.String(http.StatusOK, "EVENT_RECEIVED")
}

// SyncLeads handles POST /api/leads/sync
func (lc *LeadController) SyncLeads(c *gin.Context) {
	var req SyncLeadsRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, lc.logger, err)
		return
	}

	count, err := lc.leads.SyncLeadsFromMeta(c.Request.Context(), req.FormID)
	if err != nil {
		respondError(c, lc.logger, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"newLeadsCount": count})
}

// ListLeads handles GET /api/leads?skip=&take=
func (lc *LeadController) ListLeads(c *gin.Context) {
	skip, err := queryInt(c, "skip")
	if err != nil {
		respondError(c, lc.logger, err)
		return
	}
	take, err := queryInt(c, "take")
	if err != nil {
		respondError(c, lc.logger, err)
		return
	}

	page, err := lc.leads.ListLeads(c.Request.Context(), skip, take)
	if err != nil {
		respondError(c, lc.logger, err)
		return
	}
	respondSuccess(c, http.StatusOK, page)
}
