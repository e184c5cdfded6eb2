package mongodb

import (
	"context"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Options(
	fx.Provide(NewClient),
	fx.Provide(NewJournal),
	fx.Invoke(RegisterLifecycle),
)

// RegisterLifecycle MongoDB n'est jamais bloquant : sans lui le journal d'audit est désactivé
func RegisterLifecycle(lc fx.Lifecycle, client *Client, journal *Journal, log *zap.Logger) {
	log = log.Named("mongodb")
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if !client.Available() {
				log.Warn("MongoDB non disponible, journal d'audit désactivé")
				return nil
			}

			prepCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()

			if err := journal.EnsureCollections(prepCtx); err != nil {
				log.Warn("préparation du journal échouée, poursuite sans journal", zap.Error(err))
				return nil
			}
			log.Info("MongoDB connecté")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return client.Close(ctx)
		},
	})
}
