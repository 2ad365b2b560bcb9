package account_fx

import (
	"go.uber.org/fx"
	"gorm.io/gorm"
	"storefront/internal/config"
	"storefront/internal/repositories"
	"storefront/internal/services"
)

var Module = fx.Provide(
	provideIdentityService, provideAccountRepo, provideProfileRepo)

func provideAccountRepo(db *gorm.DB) repositories.AccountRepository {
	return repositories.NewAccountRepository(db)
}

func provideProfileRepo(db *gorm.DB) repositories.ProfileRepository {
	return repositories.NewProfileRepository(db)
}

func provideIdentityService(cfg *config.Config, accountRepo repositories.AccountRepository) services.IdentityService {
	return services.NewIdentityService(cfg, accountRepo)
}
