package mail_fx

import (
	log "github.com/sirupsen/logrus"
	"go.uber.org/fx"
	"storefront/internal/config"
	"storefront/internal/services"
)

var Module = fx.Provide(provideMailService)

func provideMailService(cfg *config.Config) services.MailService {
	if !cfg.SMTP.Enabled() || cfg.MailFrom == "" {
		log.Warn("SMTP not configured, notification emails are disabled")
	}
	return services.NewSMTPMailService(cfg)
}
