package redis

import (
	"context"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Options(
	fx.Provide(NewRedisKeyGenerator),
	fx.Provide(NewClient),
	fx.Invoke(RegisterLifecycle),
)

// RegisterLifecycle Redis est requis : sessions et limitation des tentatives en dépendent
func RegisterLifecycle(lc fx.Lifecycle, client *Client, log *zap.Logger) {
	log = log.Named("redis")
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()

			if err := client.HealthCheck(checkCtx); err != nil {
				log.Error("Redis injoignable", zap.Error(err))
				return err
			}
			log.Info("Redis connecté", zap.Uint32("pool_total", client.Stats().TotalConns))
			return nil
		},
		OnStop: func(context.Context) error {
			client.Close()
			return nil
		},
	})
}
