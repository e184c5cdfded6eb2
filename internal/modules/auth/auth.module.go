package auth

import (
	"context"

	"crm-pharma-core/internal/app/config"
	"crm-pharma-core/internal/modules/auth/controllers"
	"crm-pharma-core/internal/modules/auth/services"
	authMiddleware "crm-pharma-core/internal/shared/middleware/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(services.NewSessionService),
	fx.Provide(services.NewAuthService),
	fx.Provide(func(s *services.AuthService) controllers.Authenticator { return s }),
	fx.Provide(controllers.NewAuthController),
	fx.Invoke(RegisterAuthRoutes),
	fx.Invoke(RegisterSessionCleanup),
)

// RegisterSessionCleanup purge périodique de user_session pendant la vie du serveur
func RegisterSessionCleanup(lc fx.Lifecycle, sessions *services.SessionService, cfg *config.Config) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				sessions.RunCleanup(ctx, cfg.Session.CleanupInterval)
			}()
			return nil
		},
		OnStop: func(stop context.Context) error {
			cancel()
			select {
			case <-done:
				return nil
			case <-stop.Done():
				return stop.Err()
			}
		},
	})
}

func RegisterAuthRoutes(
	r *gin.Engine,
	authController *controllers.AuthController,
	authStack *authMiddleware.AuthMiddlewareStack,
) {
	authAPI := r.Group("/api/v1/auth")
	{
		authAPI.POST("/login", authController.Login)
		authAPI.POST("/logout", authController.Logout)
	}

	protected := r.Group("/api/v1/auth")
	protected.Use(authMiddleware.Protected(authStack)...)
	{
		protected.GET("/me", authController.Me)
		protected.PUT("/password", authController.ChangePassword)
	}
}
