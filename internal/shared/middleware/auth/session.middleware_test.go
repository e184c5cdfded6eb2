package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"crm-pharma-core/internal/modules/auth/dto"
	"crm-pharma-core/internal/shared/permissions"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type fakeValidator struct {
	sessions map[string]*dto.SessionData
	err      error
}

func (f *fakeValidator) ValidateSession(_ context.Context, token string) (*dto.SessionData, error) {
	if f.err != nil {
		return nil, f.err
	}
	if s, ok := f.sessions[token]; ok {
		return s, nil
	}
	return nil, dto.NewAuthError(dto.CodeInvalidToken, "Session invalide ou expirée", nil)
}

func newRouter(v SessionValidator, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := append([]gin.HandlerFunc{NewSessionMiddleware(v).Handler()}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		actor, _ := ActorFrom(c)
		c.JSON(http.StatusOK, gin.H{"user_id": actor.UserID, "role": actor.Role})
	})
	r.GET("/p", handlers...)
	return r
}

func do(r *gin.Engine, auth string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/p", nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	r.ServeHTTP(w, req)
	return w
}

var sessions = map[string]*dto.SessionData{
	"tok-admin": {UserID: "u1", Role: "admin"},
	"tok-tech":  {UserID: "u2", Role: "technicien"},
	"tok-bad":   {UserID: "u3", Role: "inconnu"},
}

func TestSessionMiddleware(t *testing.T) {
	r := newRouter(&fakeValidator{sessions: sessions})

	w := do(r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "TOKEN_REQUIRED")

	w = do(r, "Bearer nope")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), dto.CodeInvalidToken)

	w = do(r, "Bearer tok-bad")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, "bearer tok-admin")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":"u1","role":"admin"}`, w.Body.String())
}

func TestSessionMiddleware_TechnicalError(t *testing.T) {
	r := newRouter(&fakeValidator{err: errors.New("redis down")})
	w := do(r, "Bearer x")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "SESSION_VALIDATION_ERROR")
}

func TestRequireRoles(t *testing.T) {
	r := newRouter(&fakeValidator{sessions: sessions}, RequireRoles(permissions.RoleComptabilite))

	assert.Equal(t, http.StatusOK, do(r, "Bearer tok-admin").Code)

	w := do(r, "Bearer tok-tech")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "INSUFFICIENT_PERMISSIONS")
}

func TestExtractBearerToken(t *testing.T) {
	assert.Equal(t, "abc", ExtractBearerToken("Bearer abc"))
	assert.Equal(t, "", ExtractBearerToken("Basic abc"))
	assert.Equal(t, "", ExtractBearerToken("Bearer"))
}
