package security

import (
	"slices"
	"strings"
	"time"

	"crm-pharma-core/internal/app/config"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORSHandler type spécifique pour Fx
type CORSHandler gin.HandlerFunc

// CORSMiddleware règles CORS à partir de la configuration
func CORSMiddleware(appConfig *config.Config) CORSHandler {
	corsConfig := appConfig.CORS

	return CORSHandler(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			if slices.Contains(corsConfig.AllowedOrigins, origin) {
				return true
			}
			// front local en développement
			return appConfig.IsDevelopment() && strings.HasPrefix(origin, "http://localhost:")
		},

		AllowMethods: corsConfig.AllowedMethods,

		AllowHeaders: append(slices.Clone(corsConfig.AllowedHeaders), "X-Request-Id"),

		ExposeHeaders: []string{
			"Content-Length",
			"X-Request-Id",
			"Retry-After",
		},

		AllowCredentials: corsConfig.AllowCredentials,

		MaxAge: time.Duration(corsConfig.MaxAge) * time.Second,
	}))
}
