package controllers

import (
	"context"
	"net/http"

	"crm-pharma-core/internal/domain/billing"
	"crm-pharma-core/internal/modules/billing/dto"
	authMiddleware "crm-pharma-core/internal/shared/middleware/auth"
	"crm-pharma-core/internal/shared/permissions"
	"crm-pharma-core/internal/shared/response"
	"crm-pharma-core/internal/shared/validation"

	"github.com/gin-gonic/gin"
)

type InstallationManager interface {
	List(ctx context.Context, filters dto.ListFilters) ([]billing.Installation, error)
	Stats(ctx context.Context) (billing.InstallationStats, error)
	Get(ctx context.Context, id string) (*dto.InstallationDetail, error)
	Create(ctx context.Context, actor permissions.Actor, req dto.InstallationRequest) (*dto.InstallationResponse, error)
	Update(ctx context.Context, actor permissions.Actor, id string, req dto.InstallationRequest) (*billing.Installation, error)
	Delete(ctx context.Context, actor permissions.Actor, id string) error
}

type InstallationController struct {
	service   InstallationManager
	validator *validation.Validator
}

func NewInstallationController(service InstallationManager) *InstallationController {
	return &InstallationController{service: service, validator: validation.New()}
}

// List - GET /api/v1/installations?client_id=
func (c *InstallationController) List(ctx *gin.Context) {
	var filters dto.ListFilters
	if err := ctx.ShouldBindQuery(&filters); err != nil {
		response.Fail(ctx, http.StatusBadRequest, "INVALID_QUERY_PARAMS", "Paramètres invalides", nil)
		return
	}

	list, err := c.service.List(ctx.Request.Context(), filters)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    list,
		"total":   len(list),
	})
}

func (c *InstallationController) Stats(ctx *gin.Context) {
	stats, err := c.service.Stats(ctx.Request.Context())
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, http.StatusOK, stats)
}

func (c *InstallationController) Get(ctx *gin.Context) {
	detail, err := c.service.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, http.StatusOK, detail)
}

func (c *InstallationController) Create(ctx *gin.Context) {
	var req dto.InstallationRequest
	if !bind(ctx, c.validator, &req) {
		return
	}
	actor, _ := authMiddleware.ActorFrom(ctx)

	result, err := c.service.Create(ctx.Request.Context(), actor, req)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, http.StatusCreated, result)
}

func (c *InstallationController) Update(ctx *gin.Context) {
	var req dto.InstallationRequest
	if !bind(ctx, c.validator, &req) {
		return
	}
	actor, _ := authMiddleware.ActorFrom(ctx)

	inst, err := c.service.Update(ctx.Request.Context(), actor, ctx.Param("id"), req)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, http.StatusOK, inst)
}

func (c *InstallationController) Delete(ctx *gin.Context) {
	actor, _ := authMiddleware.ActorFrom(ctx)
	if err := c.service.Delete(ctx.Request.Context(), actor, ctx.Param("id")); err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, http.StatusOK, gin.H{"message": "Installation supprimée"})
}

func bind(ctx *gin.Context, v *validation.Validator, req interface{}) bool {
	if err := ctx.ShouldBindJSON(req); err != nil {
		response.Fail(ctx, http.StatusBadRequest, "INVALID_REQUEST_FORMAT", "Format de requête invalide", nil)
		return false
	}
	if verr := v.Struct(req); verr != nil {
		response.Error(ctx, verr)
		return false
	}
	return true
}
