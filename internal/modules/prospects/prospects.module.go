package prospects

import (
	"crm-pharma-core/internal/modules/prospects/controllers"
	"crm-pharma-core/internal/modules/prospects/services"
	authMiddleware "crm-pharma-core/internal/shared/middleware/auth"
	"crm-pharma-core/internal/shared/middleware/core"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(services.NewProspectService),
	fx.Provide(func(s *services.ProspectService) controllers.ProspectManager { return s }),
	fx.Provide(controllers.NewProspectController),
	fx.Invoke(RegisterProspectRoutes),
)

func RegisterProspectRoutes(
	r *gin.Engine,
	ctrl *controllers.ProspectController,
	authStack *authMiddleware.AuthMiddlewareStack,
) {
	api := r.Group("/api/v1/prospects")
	api.Use(authMiddleware.Protected(authStack)...)
	{
		api.GET("", ctrl.List)
		api.POST("", ctrl.Create)
		api.GET("/stats", ctrl.Stats)
	}

	byID := api.Group("/:id", core.UUIDParams("id"))
	{
		byID.GET("", ctrl.Get)
		byID.PUT("", ctrl.Update)
		byID.DELETE("", ctrl.Delete)
		byID.POST("/convert", ctrl.Convert)
		byID.GET("/history", ctrl.History)
		byID.POST("/history", ctrl.AddHistory)
		byID.DELETE("/history/:entryId", ctrl.DeleteHistory)
		byID.GET("/journal", authMiddleware.RequireAdmin(), ctrl.Journal)
	}
}
