package controllers_fx

import (
	"go.uber.org/fx"
	"storefront/internal/api/controllers"
)

var Module = fx.Options(
	fx.Provide(controllers.NewCatalogController),
	fx.Provide(controllers.NewPaymentController),
	fx.Provide(controllers.NewOrderController),
	fx.Provide(controllers.NewRetailerController),
	fx.Provide(controllers.NewContactController),
	fx.Provide(controllers.NewConfigController))
