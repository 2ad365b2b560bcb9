package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"storefront/internal/models/request_models"
	"storefront/internal/services"
	"storefront/pkg/middleware"
	"storefront/pkg/utils"
)

type RetailerController struct {
	retailerService services.RetailerService
}

func NewRetailerController(retailerService services.RetailerService) *RetailerController {
	return &RetailerController{retailerService: retailerService}
}

// Apply godoc
// @Summary Apply for a retailer account
// @Description Stores the application and checks the VAT number against VIES
// @Tags Retailers
// @Accept json
// @Produce json
// @Param request body request_models.RetailerApplyRequest true "Application"
// @Success 200 {object} response_models.RetailerApplyResponse
// @Failure 409 {object} map[string]interface{}
// @Security BearerAuth
// @Router /api/retailer-apply [post]
func (r *RetailerController) Apply(c *gin.Context) {
	var req request_models.RetailerApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	resp, err := r.retailerService.Apply(c.Request.Context(), middleware.CallerFrom(c), req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, gin.H{"status": resp.Status, "reason": resp.Reason})
}
