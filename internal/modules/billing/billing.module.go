package billing

import (
	"crm-pharma-core/internal/modules/billing/controllers"
	"crm-pharma-core/internal/modules/billing/services"
	authMiddleware "crm-pharma-core/internal/shared/middleware/auth"
	"crm-pharma-core/internal/shared/middleware/core"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(services.NewInstallationService),
	fx.Provide(services.NewPaymentService),
	fx.Provide(services.NewSubscriptionService),
	fx.Provide(func(s *services.InstallationService) controllers.InstallationManager { return s }),
	fx.Provide(func(s *services.PaymentService) controllers.PaymentManager { return s }),
	fx.Provide(func(s *services.SubscriptionService) controllers.SubscriptionManager { return s }),
	fx.Provide(controllers.NewInstallationController),
	fx.Provide(controllers.NewPaymentController),
	fx.Provide(controllers.NewSubscriptionController),
	fx.Invoke(RegisterBillingRoutes),
)

func RegisterBillingRoutes(
	r *gin.Engine,
	installations *controllers.InstallationController,
	payments *controllers.PaymentController,
	subscriptions *controllers.SubscriptionController,
	authStack *authMiddleware.AuthMiddlewareStack,
) {
	protected := authMiddleware.Protected(authStack)
	byID := core.UUIDParams("id")

	inst := r.Group("/api/v1/installations", protected...)
	{
		inst.GET("", installations.List)
		inst.POST("", installations.Create)
		inst.GET("/stats", installations.Stats)
		inst.GET("/:id", byID, installations.Get)
		inst.PUT("/:id", byID, installations.Update)
		inst.DELETE("/:id", byID, installations.Delete)
		inst.POST("/:id/renouvellement", byID, authMiddleware.RequireAdmin(), subscriptions.Extend)
	}

	pay := r.Group("/api/v1/paiements", protected...)
	{
		pay.GET("", payments.List)
		pay.POST("", payments.Create)
		pay.PUT("/:id", byID, payments.Update)
		pay.DELETE("/:id", byID, payments.Delete)
	}

	clients := r.Group("/api/v1/clients/:id", append(protected, byID)...)
	{
		clients.GET("/paiements", payments.ClientPayments)
		clients.GET("/reste-a-payer", payments.Balance)
	}

	subs := r.Group("/api/v1/abonnements", protected...)
	{
		subs.GET("", subscriptions.List)
		subs.GET("/alertes", subscriptions.Alerts)
		subs.GET("/stats", subscriptions.Stats)
		subs.POST("/renouvellements", authMiddleware.RequireAdmin(), subscriptions.Renewals)
	}
}
