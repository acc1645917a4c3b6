package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/autoparts-api/services"
	"go.uber.org/zap"
)

// ProductController serves the storefront catalog lookup
type ProductController struct {
	catalog *services.CatalogService
	logger  *zap.Logger
}

// NewProductController creates a ProductController
func NewProductController(catalog *services.CatalogService, logger *zap.Logger) *ProductController {
	return &ProductController{catalog: catalog, logger: logger}
}

// GetProducts handles GET /api/products?make=&model=&year=&part=
func (pc *ProductController) GetProducts(c *gin.Context) {
	var query services.ProductQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondError(c, pc.logger, err)
		return
	}

	products, err := pc.catalog.FindProducts(c.Request.Context(), query)
	if err != nil {
		respondError(c, pc.logger, err)
		return
	}
	respondSuccess(c, http.StatusOK, products)
}
