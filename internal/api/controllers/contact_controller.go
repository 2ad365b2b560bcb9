package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"storefront/internal/models/request_models"
	"storefront/internal/services"
	"storefront/pkg/utils"
)

type ContactController struct {
	contactService services.ContactService
}

func NewContactController(contactService services.ContactService) *ContactController {
	return &ContactController{contactService: contactService}
}

// Submit godoc
// @Summary Send a message through the contact form
// @Tags Contact
// @Accept json
// @Produce json
// @Param request body request_models.ContactRequest true "Message"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/contact [post]
func (cc *ContactController) Submit(c *gin.Context) {
	var req request_models.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	resp, err := cc.contactService.Submit(c.Request.Context(), req)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	body := gin.H{}
	if resp.ID != "" {
		body["id"] = resp.ID
	}
	if resp.Warning != "" {
		body["warning"] = resp.Warning
	}
	utils.RespondSuccess(c, body)
}
