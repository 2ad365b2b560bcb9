package catalog_fx

import (
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"gorm.io/gorm"
	"storefront/internal/config"
	"storefront/internal/repositories"
	"storefront/internal/services"
	mem "storefront/pkg/memcache"
)

var Module = fx.Provide(
	provideProductRepo, provideCatalogCache, provideCatalogService)

func provideProductRepo(db *gorm.DB) repositories.ProductRepository {
	return repositories.NewProductRepository(db)
}

// provideCatalogCache prefers Redis and falls back to the in-process store.
func provideCatalogCache(cfg *config.Config, client *redis.Client, store mem.Store) services.CatalogCache {
	if client != nil {
		return services.NewRedisCatalogCache(client, cfg.CatalogCacheTTL)
	}
	return services.NewMemCatalogCache(store, cfg.CatalogCacheTTL)
}

func provideCatalogService(
	cfg *config.Config,
	productRepo repositories.ProductRepository,
	profileRepo repositories.ProfileRepository,
	cache services.CatalogCache,
) services.CatalogService {
	return services.NewCatalogService(cfg, productRepo, profileRepo, cache)
}
