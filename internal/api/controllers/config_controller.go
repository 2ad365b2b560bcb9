package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"storefront/internal/config"
	"storefront/pkg/utils"
)

type ConfigController struct {
	cfg *config.Config
}

func NewConfigController(cfg *config.Config) *ConfigController {
	return &ConfigController{cfg: cfg}
}

// PublicConfig godoc
// @Summary Public identity-provider settings for the browser
// @Tags Config
// @Produce json
// @Router /api/public-config [get]
func (ctl *ConfigController) PublicConfig(c *gin.Context) {
	if ctl.cfg.AuthPublicURL == "" || ctl.cfg.AuthAnonKey == "" {
		utils.RespondError(c, http.StatusInternalServerError, "Server misconfigured")
		return
	}
	utils.RespondSuccess(c, gin.H{
		"auth_url":      ctl.cfg.AuthPublicURL,
		"auth_anon_key": ctl.cfg.AuthAnonKey,
	})
}

// EnvCheck godoc
// @Summary Which secrets are configured (booleans only)
// @Tags Config
// @Produce json
// @Router /api/env-check [get]
func (ctl *ConfigController) EnvCheck(c *gin.Context) {
	utils.RespondSuccess(c, gin.H{"env": gin.H{
		"DATABASE_URL":          ctl.cfg.DatabaseURL != "",
		"REDIS_URL":             ctl.cfg.RedisURL != "",
		"STRIPE_SECRET_KEY":     ctl.cfg.StripeSecretKey != "",
		"STRIPE_WEBHOOK_SECRET": ctl.cfg.StripeWebhookSecret != "",
		"AUTH_JWT_SECRET":       ctl.cfg.AuthJWTSecret != "",
		"AUTH_PUBLIC_URL":       ctl.cfg.AuthPublicURL != "",
		"AUTH_ANON_KEY":         ctl.cfg.AuthAnonKey != "",
		"SMTP_HOST":             ctl.cfg.SMTP.Host != "",
		"MAIL_FROM":             ctl.cfg.MailFrom != "",
		"CONTACT_TO_EMAIL":      ctl.cfg.ContactToEmail != "",
	}})
}
