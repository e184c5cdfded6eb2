package missions

import (
	"crm-pharma-core/internal/modules/missions/controllers"
	"crm-pharma-core/internal/modules/missions/services"
	authMiddleware "crm-pharma-core/internal/shared/middleware/auth"
	"crm-pharma-core/internal/shared/middleware/core"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(services.NewMissionService),
	fx.Provide(func(s *services.MissionService) controllers.MissionManager { return s }),
	fx.Provide(controllers.NewMissionController),
	fx.Invoke(RegisterMissionRoutes),
)

func RegisterMissionRoutes(
	r *gin.Engine,
	ctrl *controllers.MissionController,
	authStack *authMiddleware.AuthMiddlewareStack,
) {
	api := r.Group("/api/v1/missions")
	api.Use(authMiddleware.Protected(authStack)...)
	{
		api.GET("", ctrl.List)
		api.POST("", authMiddleware.RequireAdmin(), ctrl.Create)
		api.GET("/delayed", ctrl.Delayed)
	}

	// les autorisations fines par mission sont évaluées dans le service
	byID := api.Group("/:id", core.UUIDParams("id", "expenseId"))
	{
		byID.GET("", ctrl.Get)
		byID.PUT("", ctrl.Update)
		byID.DELETE("", ctrl.Delete)
		byID.GET("/actions", ctrl.Actions)
		byID.POST("/start", ctrl.Start)
		byID.POST("/close", ctrl.Close)
		byID.POST("/validate", ctrl.Validate)
		byID.GET("/report", ctrl.Report)
		byID.GET("/journal", authMiddleware.RequireAdmin(), ctrl.Journal)
		byID.PUT("/technical", ctrl.UpdateTechnical)
		byID.PUT("/financial-comments", ctrl.UpdateFinancial)
		byID.GET("/expenses", ctrl.ListExpenses)
		byID.POST("/expenses", ctrl.AddExpense)
		byID.PUT("/expenses/:expenseId", ctrl.UpdateExpense)
		byID.DELETE("/expenses/:expenseId", ctrl.DeleteExpense)
	}
}
