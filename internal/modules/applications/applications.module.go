package applications

import (
	"crm-pharma-core/internal/modules/applications/controllers"
	"crm-pharma-core/internal/modules/applications/services"
	authMiddleware "crm-pharma-core/internal/shared/middleware/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(services.NewApplicationService),
	fx.Provide(func(s *services.ApplicationService) controllers.Catalog { return s }),
	fx.Provide(controllers.NewApplicationController),
	fx.Invoke(RegisterApplicationRoutes),
)

func RegisterApplicationRoutes(
	r *gin.Engine,
	ctrl *controllers.ApplicationController,
	authStack *authMiddleware.AuthMiddlewareStack,
) {
	api := r.Group("/api/v1/applications")
	api.Use(authMiddleware.Protected(authStack)...)
	{
		api.GET("", ctrl.List)
		api.GET("/:id", ctrl.Get)
	}

	admin := r.Group("/api/v1/applications")
	admin.Use(authMiddleware.Admin(authStack)...)
	{
		admin.POST("", ctrl.Create)
		admin.PUT("/:id", ctrl.Update)
		admin.DELETE("/:id", ctrl.Delete)
	}
}
