package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"crm-pharma-core/internal/modules/auth/dto"
	"crm-pharma-core/internal/shared/permissions"
	"crm-pharma-core/internal/shared/response"

	"github.com/gin-gonic/gin"
)

// Clés du contexte Gin
const (
	ContextSession = "session"
	ContextActor   = "actor"
	ContextToken   = "token"
	ContextUserID  = "user_id"
)

// SessionValidator résout un token en session
type SessionValidator interface {
	ValidateSession(ctx context.Context, token string) (*dto.SessionData, error)
}

type SessionMiddleware struct {
	validator SessionValidator
}

func NewSessionMiddleware(validator SessionValidator) *SessionMiddleware {
	return &SessionMiddleware{validator: validator}
}

// Handler valide le Bearer token et injecte l'acteur dans le contexte
func (m *SessionMiddleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ExtractBearerToken(c.GetHeader("Authorization"))
		if token == "" {
			response.AbortFail(c, http.StatusUnauthorized, "TOKEN_REQUIRED", "Token d'authentification requis")
			return
		}

		session, err := m.validator.ValidateSession(c.Request.Context(), token)
		if err != nil {
			var authErr *dto.AuthError
			if errors.As(err, &authErr) {
				response.AbortFail(c, http.StatusUnauthorized, authErr.Code, authErr.Message)
				return
			}
			response.AbortFail(c, http.StatusUnauthorized, "SESSION_VALIDATION_ERROR",
				"Erreur lors de la validation de la session")
			return
		}

		actor := session.Actor()
		if !actor.IsAuthenticated() {
			response.AbortFail(c, http.StatusUnauthorized, dto.CodeInvalidToken, "Session invalide")
			return
		}

		c.Set(ContextSession, session)
		c.Set(ContextActor, actor)
		c.Set(ContextToken, token)
		c.Set(ContextUserID, actor.UserID)
		c.Next()
	}
}

// ExtractBearerToken "Bearer {token}" -> token
func ExtractBearerToken(header string) string {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

// ActorFrom acteur injecté par SessionMiddleware
func ActorFrom(c *gin.Context) (permissions.Actor, bool) {
	v, ok := c.Get(ContextActor)
	if !ok {
		return permissions.Actor{}, false
	}
	actor, ok := v.(permissions.Actor)
	return actor, ok
}

// SessionFrom session injectée par SessionMiddleware
func SessionFrom(c *gin.Context) (*dto.SessionData, bool) {
	v, ok := c.Get(ContextSession)
	if !ok {
		return nil, false
	}
	session, ok := v.(*dto.SessionData)
	return session, ok
}
