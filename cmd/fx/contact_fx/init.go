package contact_fx

import (
	"go.uber.org/fx"
	"gorm.io/gorm"
	"storefront/internal/config"
	"storefront/internal/repositories"
	"storefront/internal/services"
)

var Module = fx.Provide(
	provideContactRepo, provideContactService)

func provideContactRepo(db *gorm.DB) repositories.ContactRepository {
	return repositories.NewContactRepository(db)
}

func provideContactService(cfg *config.Config, repo repositories.ContactRepository, mail services.MailService) services.ContactService {
	return services.NewContactService(cfg, repo, mail)
}
