package database

import (
	"crm-pharma-core/internal/infrastructure/database/mongodb"
	"crm-pharma-core/internal/infrastructure/database/postgres"
	"crm-pharma-core/internal/infrastructure/database/redis"
	"crm-pharma-core/internal/infrastructure/database/schema"

	"go.uber.org/fx"
)

var Module = fx.Options(
	postgres.Module,
	redis.Module,
	mongodb.Module,
	schema.Module,
)
