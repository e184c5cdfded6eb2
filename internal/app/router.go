package app

import (
	"context"
	"net/http"
	"time"

	"crm-pharma-core/internal/app/config"
	"crm-pharma-core/internal/infrastructure/database/postgres"
	"crm-pharma-core/internal/infrastructure/logger"
	"crm-pharma-core/internal/shared/middleware/core"
	loggingmw "crm-pharma-core/internal/shared/middleware/logging"
	"crm-pharma-core/internal/shared/middleware/security"
	"crm-pharma-core/internal/shared/response"

	"github.com/gin-gonic/gin"
)

// Pinger sous-ensemble du client PostgreSQL utilisé par /ready
type Pinger interface {
	HealthCheck(ctx context.Context) error
}

func NewRouter(
	cfg *config.Config,
	recovery core.RecoveryHandler,
	cors security.CORSHandler,
	accessLog *logger.LoggerMiddleware,
	db *postgres.Client,
) *gin.Engine {
	return newRouter(cfg, recovery, cors, accessLog, db)
}

func newRouter(
	cfg *config.Config,
	recovery core.RecoveryHandler,
	cors security.CORSHandler,
	accessLog *logger.LoggerMiddleware,
	db Pinger,
) *gin.Engine {
	configureGinMode(cfg.Environment)

	// pas de middleware par défaut : l'ordre est fixé ici
	r := gin.New()
	r.Use(loggingmw.RequestID())
	r.Use(gin.HandlerFunc(recovery))
	r.Use(accessLog.GinLogger())
	r.Use(gin.HandlerFunc(cors))

	r.GET("/health", func(c *gin.Context) {
		response.OK(c, http.StatusOK, gin.H{"status": "healthy"})
	})

	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.HealthCheck(ctx); err != nil {
			response.Fail(c, http.StatusServiceUnavailable, "NOT_READY", "Base de données indisponible", nil)
			return
		}
		response.OK(c, http.StatusOK, gin.H{"status": "ready"})
	})

	r.NoRoute(func(c *gin.Context) {
		response.Fail(c, http.StatusNotFound, "ROUTE_NOT_FOUND", "Route introuvable", nil)
	})

	return r
}

// configureGinMode configure le mode Gin selon l'environnement
func configureGinMode(environment string) {
	switch environment {
	case "docker":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}
}
