package users

import (
	authServices "crm-pharma-core/internal/modules/auth/services"
	controllers "crm-pharma-core/internal/modules/back-office/users/controllers/comptes"
	services "crm-pharma-core/internal/modules/back-office/users/services/comptes"
	authMiddleware "crm-pharma-core/internal/shared/middleware/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(func(s *authServices.SessionService) services.SessionRevoker { return s }),
	fx.Provide(services.NewComptesService),
	fx.Provide(func(s *services.ComptesService) controllers.UserManager { return s }),
	fx.Provide(controllers.NewComptesController),
	fx.Invoke(RegisterUsersRoutes),
)

func RegisterUsersRoutes(
	r *gin.Engine,
	ctrl *controllers.ComptesController,
	authStack *authMiddleware.AuthMiddlewareStack,
) {
	api := r.Group("/api/v1/users")
	api.Use(authMiddleware.Protected(authStack)...)
	{
		api.GET("", ctrl.ListUsers)
		api.GET("/:id", ctrl.GetUser)
	}

	admin := r.Group("/api/v1/users")
	admin.Use(authMiddleware.Admin(authStack)...)
	{
		admin.POST("", ctrl.CreateUser)
		admin.PATCH("/:id/statut", ctrl.UpdateStatus)
	}
}
