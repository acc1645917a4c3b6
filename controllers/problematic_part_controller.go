package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/autoparts-api/services"
	"go.uber.org/zap"
)

// ProblematicPartController serves the post-sale issue screens
type ProblematicPartController struct {
	parts  *services.ProblematicPartService
	logger *zap.Logger
}

// NewProblematicPartController creates a ProblematicPartController
func NewProblematicPartController(parts *services.ProblematicPartService, logger *zap.Logger) *ProblematicPartController {
	return &ProblematicPartController{parts: parts, logger: logger}
}

// List handles GET /api/problematic-parts?skip=&take=&problemType=&orderId=
func (pc *ProblematicPartController) List(c *gin.Context) {
	params := services.ProblematicPartListParams{ProblemType: c.Query("problemType")}
	var err error
	if params.Skip, err = queryInt(c, "skip"); err != nil {
		respondError(c, pc.logger, err)
		return
	}
	if params.Take, err = queryInt(c, "take"); err != nil {
		respondError(c, pc.logger, err)
		return
	}
	orderID, err := queryInt(c, "orderId")
	if err != nil {
		respondError(c, pc.logger, err)
		return
	}
	params.OrderID = uint(orderID)

	page, err := pc.parts.ListProblematicParts(c.Request.Context(), params)
	if err != nil {
		respondError(c, pc.logger, err)
		return
	}
	respondSuccess(c, http.StatusOK, page)
}

// Get handles GET /api/problematic-parts/:id
func (pc *ProblematicPartController) Get(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		respondError(c, pc.logger, err)
		return
	}

	part, err := pc.parts.GetProblematicPart(c.Request.Context(), id)
	if err != nil {
		respondError(c, pc.logger, err)
		return
	}
	respondSuccess(c, http.StatusOK, part)
}

// GetByOrder handles GET /api/problematic-parts/order/:orderId
func (pc *ProblematicPartController) GetByOrder(c *gin.Context) {
	orderID, err := parseID(c, "orderId")
	if err != nil {
		respondError(c, pc.logger, err)
		return
	}

	part, err := pc.parts.GetProblematicPartByOrder(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, pc.logger, err)
		return
	}
	respondSuccess(c, http.StatusOK, part)
}

// Create handles POST /api/problematic-parts. An order has at most one
// problematic part, so posting for an order that has one updates it.
func (pc *ProblematicPartController) Create(c *gin.Context) {
	var req services.ProblematicPartInput
	if err := bindJSON(c, &req); err != nil {
		respondError(c, pc.logger, err)
		return
	}

	part, created, err := pc.parts.UpsertProblematicPartForOrder(c.Request.Context(), req)
	if err != nil {
		respondError(c, pc.logger, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	respondSuccess(c, status, part)
}

// Update handles PUT /api/problematic-parts/:id
func (pc *ProblematicPartController) Update(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		respondError(c, pc.logger, err)
		return
	}

	var req services.ProblematicPartInput
	if err := bindJSON(c, &req); err != nil {
		respondError(c, pc.logger, err)
		return
	}

	part, err := pc.parts.UpdateProblematicPart(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, pc.logger, err)
		return
	}
	respondSuccess(c, http.StatusOK, part)
}

// Delete handles DELETE /api/problematic-parts/:id
func (pc *ProblematicPartController) Delete(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		respondError(c, pc.logger, err)
		return
	}

	if err := pc.parts.DeleteProblematicPart(c.Request.Context(), id); err != nil {
		respondError(c, pc.logger, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"id": id})
}
