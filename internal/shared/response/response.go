package response

import (
	"errors"
	"net/http"

	"crm-pharma-core/internal/infrastructure/database/postgres"
	"crm-pharma-core/internal/infrastructure/database/schema"
	"crm-pharma-core/internal/shared/permissions"
	"crm-pharma-core/internal/shared/validation"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// OK enveloppe de succès
func OK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

// Fail enveloppe d'erreur {"error", "details": {"code", ...}}
func Fail(c *gin.Context, status int, code, message string, extra map[string]interface{}) {
	details := gin.H{"code": code}
	for k, v := range extra {
		details[k] = v
	}
	c.JSON(status, gin.H{
		"error":   message,
		"details": details,
	})
}

// AbortFail variante pour les middlewares
func AbortFail(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error":   message,
		"details": gin.H{"code": code},
	})
}

// IsSchemaLag vrai si l'erreur révèle une table ou colonne absente
func IsSchemaLag(err error) bool {
	return errors.Is(err, schema.ErrMigrationRequired) ||
		postgres.IsUndefinedTable(err) ||
		postgres.IsUndefinedColumn(err)
}

// Error traduit une erreur de service en réponse HTTP
func Error(c *gin.Context, err error) {
	var (
		svcErr    *ServiceError
		valErr    *validation.ValidationError
		deniedErr *permissions.DeniedError
	)

	switch {
	case errors.As(err, &valErr):
		Fail(c, http.StatusBadRequest, valErr.Code, "Erreur de validation", map[string]interface{}{"champs": valErr.Champs})
	case errors.As(err, &deniedErr):
		Fail(c, http.StatusForbidden, deniedErr.Code, deniedErr.Message, nil)
	case IsSchemaLag(err):
		Fail(c, http.StatusServiceUnavailable, "SCHEMA_MIGRATION_REQUIRED",
			"Le schéma de la base est en retard: une migration est requise", nil)
	case errors.As(err, &svcErr):
		if svcErr.Type == TypeInternal {
			logInternal(c, err)
		}
		Fail(c, statusFor(svcErr.Type), svcErr.Code, svcErr.Message, svcErr.Details)
	default:
		logInternal(c, err)
		Fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Erreur interne du serveur", nil)
	}
}

func statusFor(errType string) int {
	switch errType {
	case TypeValidation:
		return http.StatusBadRequest
	case TypeNotFound:
		return http.StatusNotFound
	case TypeConflict:
		return http.StatusConflict
	case TypeForbidden:
		return http.StatusForbidden
	case TypeSchema:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

const loggerKey = "logger"

// WithLogger rend le logger accessible à Error
func WithLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(loggerKey, log)
		c.Next()
	}
}

func logInternal(c *gin.Context, err error) {
	v, ok := c.Get(loggerKey)
	if !ok {
		return
	}
	if log, ok := v.(*zap.Logger); ok {
		log.Error("erreur interne",
			zap.Error(err),
			zap.String("path", c.FullPath()),
			zap.String("request_id", c.GetString("request_id")),
		)
	}
}
