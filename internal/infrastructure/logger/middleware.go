package logger

import (
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var skipPaths = []string{"/health", "/ready", "/favicon.ico"}

type LoggerMiddleware struct {
	log *zap.Logger
}

// GinLogger journal d'accès HTTP via zap
func (lm *LoggerMiddleware) GinLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if slices.Contains(skipPaths, path) {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.Int("status", c.Writer.Status()),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("client_ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", c.GetString("request_id")),
		}
		if userID := c.GetString("user_id"); userID != "" {
			fields = append(fields, zap.String("user_id", userID))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch status := c.Writer.Status(); {
		case status >= 500:
			lm.log.Error("requête", fields...)
		case status >= 400:
			lm.log.Warn("requête", fields...)
		default:
			lm.log.Info("requête", fields...)
		}
	}
}
