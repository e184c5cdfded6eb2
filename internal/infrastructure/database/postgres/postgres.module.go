package postgres

import (
	"context"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Options(
	fx.Provide(NewClient),
	fx.Provide(NewTransactionManager),
	fx.Provide(func(c *Client) Querier { return c }),
	fx.Provide(func(tm *TransactionManager) TxRunner { return tm }),
	fx.Invoke(RegisterLifecycle),
)

// RegisterLifecycle le démarrage échoue si PostgreSQL ne répond pas
func RegisterLifecycle(lc fx.Lifecycle, client *Client, log *zap.Logger) {
	log = log.Named("postgres")
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()

			if err := client.HealthCheck(checkCtx); err != nil {
				log.Error("PostgreSQL injoignable", zap.Error(err))
				return err
			}
			stats := client.Stats()
			log.Info("PostgreSQL connecté", zap.Int32("max_conns", stats.MaxConns()))
			return nil
		},
		OnStop: func(context.Context) error {
			client.Close()
			return nil
		},
	})
}
