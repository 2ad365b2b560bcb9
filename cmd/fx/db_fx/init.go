package db_fx

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"gorm.io/gorm"
	"storefront/internal/config"
	"storefront/internal/infra"
)

var Module = fx.Provide(
	provideDB, provideRedis)

func provideDB(lc fx.Lifecycle, cfg *config.Config) (*gorm.DB, error) {
	db, err := infra.InitPostgresql(cfg)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			infra.ClosePostgresql(db)
			return nil
		},
	})
	return db, nil
}

// provideRedis yields a nil client when REDIS_URL is empty.
func provideRedis(lc fx.Lifecycle, cfg *config.Config) (*redis.Client, error) {
	client, err := infra.InitRedis(cfg)
	if err != nil || client == nil {
		return client, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
	return client, nil
}
