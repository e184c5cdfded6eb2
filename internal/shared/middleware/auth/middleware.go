package auth

import (
	"crm-pharma-core/internal/modules/auth/services"
	"crm-pharma-core/internal/shared/permissions"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

// AuthMiddlewareStack chaînes de middlewares appliquées par les modules
type AuthMiddlewareStack struct {
	SessionMiddleware *SessionMiddleware
}

func NewAuthMiddlewareStack(sessionService *services.SessionService) *AuthMiddlewareStack {
	return &AuthMiddlewareStack{
		SessionMiddleware: NewSessionMiddleware(sessionService),
	}
}

func (stack *AuthMiddlewareStack) ApplyBasicAuth() []gin.HandlerFunc {
	return []gin.HandlerFunc{stack.SessionMiddleware.Handler()}
}

func (stack *AuthMiddlewareStack) ApplyRoleAuth(roles ...permissions.Role) []gin.HandlerFunc {
	return append(stack.ApplyBasicAuth(), RequireRoles(roles...))
}

var AuthMiddlewareModule = fx.Options(
	fx.Provide(NewAuthMiddlewareStack),
)

// Protected session valide requise
func Protected(stack *AuthMiddlewareStack) []gin.HandlerFunc {
	return stack.ApplyBasicAuth()
}

// Admin session admin ou super_admin requise
func Admin(stack *AuthMiddlewareStack) []gin.HandlerFunc {
	return stack.ApplyRoleAuth()
}
