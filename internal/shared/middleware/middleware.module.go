package middleware

import (
	"crm-pharma-core/internal/shared/middleware/auth"
	"crm-pharma-core/internal/shared/middleware/core"
	"crm-pharma-core/internal/shared/middleware/security"

	"go.uber.org/fx"
)

// Module middlewares partagés
var Module = fx.Options(
	fx.Provide(core.RecoveryMiddleware),
	fx.Provide(security.CORSMiddleware),
	auth.AuthMiddlewareModule,
)
