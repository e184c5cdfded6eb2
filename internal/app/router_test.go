package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"crm-pharma-core/internal/app/config"
	"crm-pharma-core/internal/infrastructure/logger"
	"crm-pharma-core/internal/shared/middleware/core"
	"crm-pharma-core/internal/shared/middleware/security"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakePinger struct{ err error }

func (f fakePinger) HealthCheck(context.Context) error { return f.err }

func testRouter(db Pinger) http.Handler {
	cfg := &config.Config{Environment: "test"}
	log := zap.NewNop()
	return newRouter(cfg, core.RecoveryMiddleware(log), security.CORSMiddleware(cfg), logger.NewMiddleware(log), db)
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestRouter_HealthEndpoints(t *testing.T) {
	ok := testRouter(fakePinger{})
	assert.Equal(t, http.StatusOK, get(ok, "/health").Code)
	assert.Equal(t, http.StatusOK, get(ok, "/ready").Code)

	down := testRouter(fakePinger{err: errors.New("pool vide")})
	w := get(down, "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_READY")
}

func TestRouter_RequestIDAndNoRoute(t *testing.T) {
	w := get(testRouter(fakePinger{}), "/api/v1/inconnu")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
	assert.Contains(t, w.Body.String(), "ROUTE_NOT_FOUND")
}
