package config_fx

import (
	"go.uber.org/fx"
	"storefront/internal/config"
)

var Module = fx.Options(
	fx.Provide(config.Load),
	fx.Invoke(config.ConfigureLogger),
)
