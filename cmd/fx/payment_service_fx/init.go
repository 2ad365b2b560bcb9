package payment_service_fx

import (
	"go.uber.org/fx"
	"gorm.io/gorm"
	"storefront/internal/config"
	"storefront/internal/repositories"
	"storefront/internal/services"
)

var Module = fx.Provide(
	provideProcessor,
	provideEventRepo,
	provideOrderRepo,
	provideCheckoutService,
	provideWebhookService,
	provideOrderService,
)

func provideProcessor(cfg *config.Config) services.PaymentProcessor {
	return services.NewStripeProcessor(cfg)
}

func provideEventRepo(db *gorm.DB) repositories.EventRepository {
	return repositories.NewEventRepository(db)
}

func provideOrderRepo(db *gorm.DB) repositories.OrderRepository {
	return repositories.NewOrderRepository(db)
}

func provideCheckoutService(
	cfg *config.Config,
	identity services.IdentityService,
	profileRepo repositories.ProfileRepository,
	productRepo repositories.ProductRepository,
	processor services.PaymentProcessor,
) services.CheckoutService {
	return services.NewCheckoutService(cfg, identity, profileRepo, productRepo, processor)
}

func provideWebhookService(
	cfg *config.Config,
	processor services.PaymentProcessor,
	eventRepo repositories.EventRepository,
	orderRepo repositories.OrderRepository,
	identity services.IdentityService,
	mail services.MailService,
) services.WebhookService {
	return services.NewWebhookService(cfg, processor, eventRepo, orderRepo, identity, mail)
}

func provideOrderService(orderRepo repositories.OrderRepository) services.OrderService {
	return services.NewOrderService(orderRepo)
}
