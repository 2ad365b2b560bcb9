package controllers

import (
	"github.com/gin-gonic/gin"
	"storefront/internal/services"
	"storefront/pkg/middleware"
	"storefront/pkg/utils"
)

type CatalogController struct {
	catalogService services.CatalogService
}

func NewCatalogController(catalogService services.CatalogService) *CatalogController {
	return &CatalogController{catalogService: catalogService}
}

// ListProducts godoc
// @Summary List active products
// @Description Retailers signed in also get your_price_cents
// @Tags Catalog
// @Produce json
// @Success 200 {array} response_models.ProductResponse
// @Router /api/products [get]
func (ctl *CatalogController) ListProducts(c *gin.Context) {
	products, err := ctl.catalogService.ListActive(c.Request.Context(), middleware.CallerFrom(c))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, gin.H{"products": products})
}

// GetProduct godoc
// @Summary Get an active product
// @Tags Catalog
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} response_models.ProductResponse
// @Failure 404 {object} map[string]interface{}
// @Router /api/products/{id} [get]
func (ctl *CatalogController) GetProduct(c *gin.Context) {
	product, err := ctl.catalogService.Get(c.Request.Context(), middleware.CallerFrom(c), c.Param("id"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, gin.H{"product": product})
}
