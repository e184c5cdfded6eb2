package controllers

import (
	"context"
	"net/http"

	"crm-pharma-core/internal/domain/billing"
	"crm-pharma-core/internal/modules/applications/dto"
	authMiddleware "crm-pharma-core/internal/shared/middleware/auth"
	"crm-pharma-core/internal/shared/permissions"
	"crm-pharma-core/internal/shared/response"
	"crm-pharma-core/internal/shared/validation"

	"github.com/gin-gonic/gin"
)

type Catalog interface {
	List(ctx context.Context, includeInactive bool) ([]billing.Application, error)
	Get(ctx context.Context, id string) (*billing.Application, error)
	Create(ctx context.Context, actor permissions.Actor, req dto.ApplicationRequest) (*billing.Application, error)
	Update(ctx context.Context, actor permissions.Actor, id string, req dto.ApplicationRequest) (*billing.Application, error)
	Delete(ctx context.Context, actor permissions.Actor, id string) error
}

type ApplicationController struct {
	service   Catalog
	validator *validation.Validator
}

func NewApplicationController(service Catalog) *ApplicationController {
	return &ApplicationController{service: service, validator: validation.New()}
}

// List - GET /api/v1/applications[?all=true]
func (c *ApplicationController) List(ctx *gin.Context) {
	var filters dto.ListFilters
	if err := ctx.ShouldBindQuery(&filters); err != nil {
		response.Fail(ctx, http.StatusBadRequest, "INVALID_QUERY_PARAMS", "Paramètres invalides", nil)
		return
	}

	apps, err := c.service.List(ctx.Request.Context(), filters.All)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, http.StatusOK, apps)
}

func (c *ApplicationController) Get(ctx *gin.Context) {
	app, err := c.service.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, http.StatusOK, app)
}

func (c *ApplicationController) Create(ctx *gin.Context) {
	req, ok := c.bind(ctx)
	if !ok {
		return
	}
	actor, _ := authMiddleware.ActorFrom(ctx)

	app, err := c.service.Create(ctx.Request.Context(), actor, req)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, http.StatusCreated, app)
}

func (c *ApplicationController) Update(ctx *gin.Context) {
	req, ok := c.bind(ctx)
	if !ok {
		return
	}
	actor, _ := authMiddleware.ActorFrom(ctx)

	app, err := c.service.Update(ctx.Request.Context(), actor, ctx.Param("id"), req)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, http.StatusOK, app)
}

func (c *ApplicationController) Delete(ctx *gin.Context) {
	actor, _ := authMiddleware.ActorFrom(ctx)
	if err := c.service.Delete(ctx.Request.Context(), actor, ctx.Param("id")); err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, http.StatusOK, gin.H{"message": "Application supprimée"})
}

func (c *ApplicationController) bind(ctx *gin.Context) (dto.ApplicationRequest, bool) {
	var req dto.ApplicationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.Fail(ctx, http.StatusBadRequest, "INVALID_REQUEST_FORMAT", "Format de requête invalide", nil)
		return req, false
	}
	if verr := c.validator.Struct(req); verr != nil {
		response.Error(ctx, verr)
		return req, false
	}
	return req, true
}
