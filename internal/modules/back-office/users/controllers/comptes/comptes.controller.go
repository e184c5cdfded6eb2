package comptes

import (
	"context"
	"net/http"

	dto "crm-pharma-core/internal/modules/back-office/users/dto/comptes"
	authMiddleware "crm-pharma-core/internal/shared/middleware/auth"
	"crm-pharma-core/internal/shared/permissions"
	"crm-pharma-core/internal/shared/response"
	"crm-pharma-core/internal/shared/validation"

	"github.com/gin-gonic/gin"
)

// UserManager opérations du service comptes
type UserManager interface {
	CreateUser(ctx context.Context, actor permissions.Actor, req dto.CreateUserRequest) (*dto.CreateUserResponse, error)
	ListUsers(ctx context.Context, filters dto.ListUsersFilters) ([]dto.UserSummary, error)
	GetUser(ctx context.Context, id string) (*dto.UserSummary, error)
	UpdateStatus(ctx context.Context, actor permissions.Actor, id string, req dto.UpdateStatusRequest) error
}

type ComptesController struct {
	service   UserManager
	validator *validation.Validator
}

func NewComptesController(service UserManager) *ComptesController {
	return &ComptesController{
		service:   service,
		validator: validation.New(),
	}
}

// CreateUser - POST /api/v1/users
func (c *ComptesController) CreateUser(ctx *gin.Context) {
	actor, _ := authMiddleware.ActorFrom(ctx)

	var req dto.CreateUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.Fail(ctx, http.StatusBadRequest, "INVALID_REQUEST_FORMAT", "Format de requête invalide", nil)
		return
	}
	if verr := c.validator.Struct(req); verr != nil {
		response.Error(ctx, verr)
		return
	}

	result, err := c.service.CreateUser(ctx.Request.Context(), actor, req)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, http.StatusCreated, result)
}

// ListUsers - GET /api/v1/users?role=&statut=&q=
func (c *ComptesController) ListUsers(ctx *gin.Context) {
	var filters dto.ListUsersFilters
	if err := ctx.ShouldBindQuery(&filters); err != nil {
		response.Fail(ctx, http.StatusBadRequest, "INVALID_QUERY_PARAMS", "Paramètres invalides", nil)
		return
	}
	if filters.Role != "" && !permissions.Role(filters.Role).IsValid() {
		response.Error(ctx, validation.FromFields(map[string]string{"role": "Rôle inconnu"}))
		return
	}

	users, err := c.service.ListUsers(ctx.Request.Context(), filters)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, http.StatusOK, users)
}

// GetUser - GET /api/v1/users/:id
func (c *ComptesController) GetUser(ctx *gin.Context) {
	user, err := c.service.GetUser(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, http.StatusOK, user)
}

// UpdateStatus - PATCH /api/v1/users/:id/statut
func (c *ComptesController) UpdateStatus(ctx *gin.Context) {
	actor, _ := authMiddleware.ActorFrom(ctx)

	var req dto.UpdateStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.Fail(ctx, http.StatusBadRequest, "INVALID_REQUEST_FORMAT", "Format de requête invalide", nil)
		return
	}
	if verr := c.validator.Struct(req); verr != nil {
		response.Error(ctx, verr)
		return
	}

	if err := c.service.UpdateStatus(ctx.Request.Context(), actor, ctx.Param("id"), req); err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, http.StatusOK, gin.H{"message": "Statut mis à jour"})
}
