package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"storefront/internal/models/request_models"
	"storefront/internal/services"
	"storefront/pkg/middleware"
	"storefront/pkg/utils"
)

// Stripe webhook bodies are small; anything bigger is not ours.
const maxWebhookBody = 65536

type PaymentController struct {
	checkoutService services.CheckoutService
	webhookService  services.WebhookService
}

func NewPaymentController(checkoutService services.CheckoutService, webhookService services.WebhookService) *PaymentController {
	return &PaymentController{
		checkoutService: checkoutService,
		webhookService:  webhookService,
	}
}

// CreateCheckoutSession godoc
// @Summary Create a hosted checkout session for the cart
// @Description Prices the cart for the caller (bearer token or guest_email) and returns the payment page URL
// @Tags Payments
// @Accept json
// @Produce json
// @Param request body request_models.CheckoutRequest true "Cart"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Router /api/create-checkout-session [post]
func (p *PaymentController) CreateCheckoutSession(c *gin.Context) {
	var request request_models.CheckoutRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	url, err := p.checkoutService.CreateCheckoutSession(c.Request.Context(), services.CheckoutInput{
		BearerToken: middleware.BearerToken(c),
		Request:     request,
		BaseURL:     baseURL(c),
	})
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.RespondSuccess(c, gin.H{"url": url})
}

// HandleWebhook godoc
// @Summary Payment processor webhook
// @Description Verifies the Stripe-Signature header over the raw body and reconciles the order
// @Tags Payments
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/stripe-webhook [post]
func (p *PaymentController) HandleWebhook(c *gin.Context) {
	// Read the body untouched; the signature covers these exact bytes.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody)
	payload, err := c.GetRawData()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.RespondError(c, http.StatusRequestEntityTooLarge, "Payload too large")
			return
		}
		utils.RespondError(c, http.StatusBadRequest, "Could not read body")
		return
	}

	result, err := p.webhookService.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	body := gin.H{"received": true}
	if result.Duplicate {
		body["duplicate"] = true
	}
	utils.RespondSuccess(c, body)
}

// baseURL honours the proxy headers set by the hosting platform.
func baseURL(c *gin.Context) string {
	proto := firstHeaderValue(c.GetHeader("X-Forwarded-Proto"))
	if proto == "" {
		proto = "https"
	}
	host := firstHeaderValue(c.GetHeader("X-Forwarded-Host"))
	if host == "" {
		host = c.Request.Host
	}
	return proto + "://" + host
}

func firstHeaderValue(v string) string {
	if i := strings.Index(v, ","); i >= 0 {
		v = v[:i]
	}
	return strings.TrimSpace(v)
}
