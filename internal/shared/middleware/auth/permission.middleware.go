package auth

import (
	"net/http"

	"crm-pharma-core/internal/shared/permissions"
	"crm-pharma-core/internal/shared/response"

	"github.com/gin-gonic/gin"
)

// RequireRoles refuse (403) si l'acteur n'a aucun des rôles ; admin et super_admin passent toujours
func RequireRoles(roles ...permissions.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := ActorFrom(c)
		if !ok {
			response.AbortFail(c, http.StatusUnauthorized, "SESSION_REQUIRED", "Session requise")
			return
		}
		if actor.IsAdmin() || actor.HasRole(roles...) {
			c.Next()
			return
		}
		response.AbortFail(c, http.StatusForbidden, "INSUFFICIENT_PERMISSIONS", "Permissions insuffisantes pour cette action")
	}
}

// RequireAdmin admin ou super_admin
func RequireAdmin() gin.HandlerFunc {
	return RequireRoles()
}
