package logger

import (
	"context"

	"crm-pharma-core/internal/app/config"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Options(
	fx.Provide(NewLogger),
	fx.Provide(NewMiddleware),
	fx.Invoke(RegisterLifecycle),
)

func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	return New(cfg.Environment, cfg.Logging.Level)
}

func NewMiddleware(log *zap.Logger) *LoggerMiddleware {
	return &LoggerMiddleware{log: log.Named("http")}
}

func RegisterLifecycle(lc fx.Lifecycle, log *zap.Logger) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			// Sync échoue sur stdout/stderr selon la plateforme
			_ = log.Sync()
			return nil
		},
	})
}
