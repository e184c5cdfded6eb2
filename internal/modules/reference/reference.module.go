package reference

import (
	"crm-pharma-core/internal/modules/reference/controllers"
	authMiddleware "crm-pharma-core/internal/shared/middleware/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(controllers.NewWilayaController),
	fx.Invoke(RegisterReferenceRoutes),
)

func RegisterReferenceRoutes(
	r *gin.Engine,
	ctrl *controllers.WilayaController,
	authStack *authMiddleware.AuthMiddlewareStack,
) {
	api := r.Group("/api/v1/reference")
	api.Use(authMiddleware.Protected(authStack)...)
	{
		api.GET("/wilayas", ctrl.List)
		api.GET("/wilayas/:code", ctrl.Get)
	}
}
