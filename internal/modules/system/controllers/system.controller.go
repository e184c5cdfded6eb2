package controllers

import (
	"context"
	"net/http"

	"crm-pharma-core/internal/modules/system/dto"
	authMiddleware "crm-pharma-core/internal/shared/middleware/auth"
	"crm-pharma-core/internal/shared/response"
	"crm-pharma-core/internal/shared/validation"

	"github.com/gin-gonic/gin"
)

type SystemProvider interface {
	GetSystemInfo(ctx context.Context) (*dto.SystemInfoResponse, error)
	Schema(ctx context.Context, userID string) (*dto.SchemaStatus, error)
	Banner(ctx context.Context, userID string) (*dto.BannerPreference, error)
	SetBanner(ctx context.Context, userID string, masquee bool) (*dto.BannerPreference, error)
	Tables(ctx context.Context) ([]dto.TableStatus, error)
}

type SystemController struct {
	service   SystemProvider
	validator *validation.Validator
}

func NewSystemController(service SystemProvider) *SystemController {
	return &SystemController{service: service, validator: validation.New()}
}

// GetSystemInfo - GET /api/v1/system/info
func (c *SystemController) GetSystemInfo(ctx *gin.Context) {
	info, err := c.service.GetSystemInfo(ctx.Request.Context())
	if err != nil {
		response.Error(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    info,
		"alertes": info.Alertes,
	})
}

// Schema - GET /api/v1/system/schema
func (c *SystemController) Schema(ctx *gin.Context) {
	actor, _ := authMiddleware.ActorFrom(ctx)
	status, err := c.service.Schema(ctx.Request.Context(), actor.UserID)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, http.StatusOK, status)
}

func (c *SystemController) GetBanner(ctx *gin.Context) {
	actor, _ := authMiddleware.ActorFrom(ctx)
	pref, err := c.service.Banner(ctx.Request.Context(), actor.UserID)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, http.StatusOK, pref)
}

// SetBanner - PUT /api/v1/system/preferences/migration-banner
func (c *SystemController) SetBanner(ctx *gin.Context) {
	var req dto.BannerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.Fail(ctx, http.StatusBadRequest, "INVALID_REQUEST_FORMAT", "Format de requête invalide", nil)
		return
	}
	if verr := c.validator.Struct(req); verr != nil {
		response.Error(ctx, verr)
		return
	}

	actor, _ := authMiddleware.ActorFrom(ctx)
	pref, err := c.service.SetBanner(ctx.Request.Context(), actor.UserID, *req.Masquee)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, http.StatusOK, pref)
}

// Tables - GET /api/v1/system/tables (admin)
func (c *SystemController) Tables(ctx *gin.Context) {
	tables, err := c.service.Tables(ctx.Request.Context())
	if err != nil {
		response.Error(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    tables,
		"total":   len(tables),
	})
}
