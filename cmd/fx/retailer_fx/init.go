package retailer_fx

import (
	"go.uber.org/fx"
	"gorm.io/gorm"
	"storefront/internal/config"
	"storefront/internal/repositories"
	"storefront/internal/services"
)

var Module = fx.Provide(
	provideRetailerRepo, provideVatChecker, provideRetailerService)

func provideRetailerRepo(db *gorm.DB) repositories.RetailerApplicationRepository {
	return repositories.NewRetailerApplicationRepository(db)
}

func provideVatChecker(cfg *config.Config) services.VatChecker {
	return services.NewViesClient(cfg)
}

func provideRetailerService(
	cfg *config.Config,
	appRepo repositories.RetailerApplicationRepository,
	profileRepo repositories.ProfileRepository,
	vat services.VatChecker,
	mail services.MailService,
) services.RetailerService {
	return services.NewRetailerService(cfg, appRepo, profileRepo, vat, mail)
}
