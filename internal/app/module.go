package app

import (
	"crm-pharma-core/internal/app/bootstrap"
	"crm-pharma-core/internal/app/config"
	"crm-pharma-core/internal/infrastructure/database"
	"crm-pharma-core/internal/infrastructure/database/redis"
	"crm-pharma-core/internal/infrastructure/events"
	"crm-pharma-core/internal/infrastructure/logger"
	"crm-pharma-core/internal/infrastructure/textgen"
	"crm-pharma-core/internal/modules/analysis"
	"crm-pharma-core/internal/modules/applications"
	"crm-pharma-core/internal/modules/auth"
	"crm-pharma-core/internal/modules/back-office/users"
	"crm-pharma-core/internal/modules/billing"
	"crm-pharma-core/internal/modules/missions"
	"crm-pharma-core/internal/modules/prospects"
	"crm-pharma-core/internal/modules/reference"
	"crm-pharma-core/internal/modules/system"
	"crm-pharma-core/internal/shared/middleware"

	"go.uber.org/fx"
)

// ApplyCacheTTL TTL du cache dashboard configurable
func ApplyCacheTTL(cfg *config.Config, keys *redis.RedisKeyGenerator) error {
	return keys.OverrideTTL(redis.PatternDashboard, cfg.Analysis.DashboardCacheTTL)
}

// InfrastructureModule configuration et dépendances externes, partagé avec la CLI
var InfrastructureModule = fx.Options(
	fx.Provide(config.NewConfig),
	fx.Provide(config.NewPostgresConfig),
	fx.Provide(config.NewRedisConfig),
	fx.Provide(config.NewMongoConfig),
	fx.Provide(config.NewKafkaConfig),
	fx.Provide(config.NewGenAIConfig),

	logger.Module,
	database.Module,
	events.Module,
	textgen.Module,

	fx.Invoke(ApplyCacheTTL),
)

var AppModule = fx.Options(
	InfrastructureModule,

	// Middlewares partagés (après infrastructure, avant modules métier)
	middleware.Module,

	// Router
	fx.Provide(NewRouter),

	// Modules métier
	auth.Module,
	users.Module,
	reference.Module,
	applications.Module,
	prospects.Module,
	missions.Module,
	billing.Module,
	analysis.Module,
	system.Module,

	// Bootstrap : extensions, migrations, seeding avant le serveur HTTP
	bootstrap.Module,

	// Application
	fx.Provide(NewApplication),
	fx.Invoke((*Application).Start),
)
