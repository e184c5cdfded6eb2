package system

import (
	"crm-pharma-core/internal/modules/system/controllers"
	"crm-pharma-core/internal/modules/system/services"
	authMiddleware "crm-pharma-core/internal/shared/middleware/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

// Module regroupe les providers du domaine System
var Module = fx.Options(
	fx.Provide(services.NewSystemService),
	fx.Provide(func(s *services.SystemService) controllers.SystemProvider { return s }),
	fx.Provide(controllers.NewSystemController),
	fx.Invoke(RegisterSystemRoutes),
)

// RegisterSystemRoutes configure les routes Gin pour System
func RegisterSystemRoutes(
	r *gin.Engine,
	ctrl *controllers.SystemController,
	authStack *authMiddleware.AuthMiddlewareStack,
) {
	api := r.Group("/api/v1/system", authMiddleware.Protected(authStack)...)
	{
		api.GET("/info", ctrl.GetSystemInfo)
		api.GET("/schema", ctrl.Schema)
		api.GET("/preferences/migration-banner", ctrl.GetBanner)
		api.PUT("/preferences/migration-banner", ctrl.SetBanner)
		api.GET("/tables", authMiddleware.RequireAdmin(), ctrl.Tables)
	}
}
