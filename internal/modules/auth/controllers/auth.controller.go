package controllers

import (
	"context"
	"errors"
	"net/http"

	"crm-pharma-core/internal/modules/auth/dto"
	authMiddleware "crm-pharma-core/internal/shared/middleware/auth"
	"crm-pharma-core/internal/shared/response"
	"crm-pharma-core/internal/shared/validation"

	"github.com/gin-gonic/gin"
)

// Authenticator opérations exposées par le service d'authentification
type Authenticator interface {
	Login(ctx context.Context, req dto.LoginRequest, ipAddress, userAgent string) (*dto.LoginResponse, error)
	Logout(ctx context.Context, token string) error
	Me(ctx context.Context, session *dto.SessionData) (*dto.MeResponse, error)
	ChangePassword(ctx context.Context, userID string, req dto.ChangePasswordRequest) error
}

type AuthController struct {
	authService Authenticator
	validator   *validation.Validator
}

func NewAuthController(authService Authenticator) *AuthController {
	return &AuthController{
		authService: authService,
		validator:   validation.New(),
	}
}

// Login - POST /api/v1/auth/login
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.Fail(ctx, http.StatusBadRequest, "INVALID_REQUEST_FORMAT", "Données de connexion invalides", nil)
		return
	}
	if verr := c.validator.Struct(req); verr != nil {
		response.Error(ctx, verr)
		return
	}

	result, err := c.authService.Login(ctx.Request.Context(), req, ctx.ClientIP(), ctx.GetHeader("User-Agent"))
	if err != nil {
		c.authError(ctx, err)
		return
	}

	response.OK(ctx, http.StatusOK, result)
}

// Logout - POST /api/v1/auth/logout, toujours 200
func (c *AuthController) Logout(ctx *gin.Context) {
	token := authMiddleware.ExtractBearerToken(ctx.GetHeader("Authorization"))
	if token == "" {
		response.Fail(ctx, http.StatusUnauthorized, "TOKEN_REQUIRED", "Token d'authentification requis", nil)
		return
	}

	_ = c.authService.Logout(ctx.Request.Context(), token)
	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Déconnexion réussie",
	})
}

// Me - GET /api/v1/auth/me
func (c *AuthController) Me(ctx *gin.Context) {
	session, ok := authMiddleware.SessionFrom(ctx)
	if !ok {
		response.Fail(ctx, http.StatusUnauthorized, "SESSION_REQUIRED", "Session requise", nil)
		return
	}

	result, err := c.authService.Me(ctx.Request.Context(), session)
	if err != nil {
		c.authError(ctx, err)
		return
	}
	response.OK(ctx, http.StatusOK, result)
}

// ChangePassword - PUT /api/v1/auth/password
func (c *AuthController) ChangePassword(ctx *gin.Context) {
	actor, _ := authMiddleware.ActorFrom(ctx)

	var req dto.ChangePasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.Fail(ctx, http.StatusBadRequest, "INVALID_REQUEST_FORMAT", "Données invalides", nil)
		return
	}
	if verr := c.validator.Struct(req); verr != nil {
		response.Error(ctx, verr)
		return
	}

	if err := c.authService.ChangePassword(ctx.Request.Context(), actor.UserID, req); err != nil {
		c.authError(ctx, err)
		return
	}
	response.OK(ctx, http.StatusOK, gin.H{"message": "Mot de passe changé avec succès"})
}

func (c *AuthController) authError(ctx *gin.Context, err error) {
	var authErr *dto.AuthError
	if !errors.As(err, &authErr) {
		response.Error(ctx, err)
		return
	}

	status := http.StatusUnauthorized
	switch authErr.Code {
	case dto.CodeRateLimited:
		status = http.StatusTooManyRequests
	case dto.CodeUserInactive:
		status = http.StatusForbidden
	case "WEAK_PASSWORD", "INVALID_CURRENT_PASSWORD":
		status = http.StatusBadRequest
	}
	response.Fail(ctx, status, authErr.Code, authErr.Message, authErr.Details)
}
