package analysis

import (
	"crm-pharma-core/internal/modules/analysis/controllers"
	"crm-pharma-core/internal/modules/analysis/services"
	authMiddleware "crm-pharma-core/internal/shared/middleware/auth"
	"crm-pharma-core/internal/shared/middleware/core"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(services.NewAnalysisService),
	fx.Provide(func(s *services.AnalysisService) controllers.AnalysisProvider { return s }),
	fx.Provide(controllers.NewAnalysisController),
	fx.Invoke(RegisterAnalysisRoutes),
)

func RegisterAnalysisRoutes(
	r *gin.Engine,
	controller *controllers.AnalysisController,
	authStack *authMiddleware.AuthMiddlewareStack,
) {
	byID := core.UUIDParams("id")

	api := r.Group("/api/v1/analysis", authMiddleware.Protected(authStack)...)
	{
		api.GET("/dashboard", controller.Dashboard)
		api.GET("/missions", controller.Missions)
		api.GET("/missions/insights", controller.Insights)
		api.GET("/missions/:id", byID, controller.Mission)
		api.POST("/prospects/:id/summary", byID, controller.ProspectSummary)
	}
}
