package controllers

import (
	"github.com/gin-gonic/gin"
	"storefront/internal/services"
	"storefront/pkg/middleware"
	"storefront/pkg/utils"
)

type OrderController struct {
	orderService services.OrderService
}

func NewOrderController(orderService services.OrderService) *OrderController {
	return &OrderController{orderService: orderService}
}

// GetOrderStatus godoc
// @Summary Order reconciled for a checkout session
// @Description Returns 404 until the webhook has stored the order; clients poll
// @Tags Orders
// @Produce json
// @Param session_id query string true "Checkout session id"
// @Success 200 {object} response_models.OrderStatusResponse
// @Failure 404 {object} map[string]interface{}
// @Security BearerAuth
// @Router /api/order-status [get]
func (o *OrderController) GetOrderStatus(c *gin.Context) {
	order, err := o.orderService.GetOrderStatus(c.Request.Context(), middleware.CallerFrom(c), c.Query("session_id"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}
	utils.RespondSuccess(c, gin.H{"order": order})
}
