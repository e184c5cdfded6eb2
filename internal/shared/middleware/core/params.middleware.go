package core

import (
	"net/http"

	"crm-pharma-core/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UUIDParams rejette les paramètres de route qui ne sont pas des UUID
func UUIDParams(names ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, name := range names {
			v := c.Param(name)
			if v == "" {
				continue
			}
			if _, err := uuid.Parse(v); err != nil {
				response.AbortFail(c, http.StatusBadRequest, "INVALID_ID", "Identifiant invalide: "+name)
				return
			}
		}
		c.Next()
	}
}
