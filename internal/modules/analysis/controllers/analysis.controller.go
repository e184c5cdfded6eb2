package controllers

import (
	"context"
	"net/http"

	"crm-pharma-core/internal/domain/analysis"
	"crm-pharma-core/internal/modules/analysis/dto"
	authMiddleware "crm-pharma-core/internal/shared/middleware/auth"
	"crm-pharma-core/internal/shared/permissions"
	"crm-pharma-core/internal/shared/response"

	"github.com/gin-gonic/gin"
)

type AnalysisProvider interface {
	Missions(ctx context.Context, actor permissions.Actor) (analysis.Insights, error)
	Mission(ctx context.Context, actor permissions.Actor, id string) (*analysis.MissionReport, error)
	Insights(ctx context.Context, actor permissions.Actor) (*dto.MissionInsights, error)
	ProspectSummary(ctx context.Context, actor permissions.Actor, id string) (*dto.ProspectSummary, error)
	Dashboard(ctx context.Context, actor permissions.Actor) (*dto.Dashboard, error)
}

type AnalysisController struct {
	service AnalysisProvider
}

func NewAnalysisController(service AnalysisProvider) *AnalysisController {
	return &AnalysisController{service: service}
}

// Missions - GET /api/v1/analysis/missions
func (c *AnalysisController) Missions(ctx *gin.Context) {
	actor, _ := authMiddleware.ActorFrom(ctx)
	insights, err := c.service.Missions(ctx.Request.Context(), actor)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, http.StatusOK, insights)
}

// Mission - GET /api/v1/analysis/missions/:id
func (c *AnalysisController) Mission(ctx *gin.Context) {
	actor, _ := authMiddleware.ActorFrom(ctx)
	report, err := c.service.Mission(ctx.Request.Context(), actor, ctx.Param("id"))
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, http.StatusOK, report)
}

func (c *AnalysisController) Insights(ctx *gin.Context) {
	actor, _ := authMiddleware.ActorFrom(ctx)
	insights, err := c.service.Insights(ctx.Request.Context(), actor)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, http.StatusOK, insights)
}

// ProspectSummary - POST /api/v1/analysis/prospects/:id/summary
func (c *AnalysisController) ProspectSummary(ctx *gin.Context) {
	actor, _ := authMiddleware.ActorFrom(ctx)
	summary, err := c.service.ProspectSummary(ctx.Request.Context(), actor, ctx.Param("id"))
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, http.StatusOK, summary)
}

func (c *AnalysisController) Dashboard(ctx *gin.Context) {
	actor, _ := authMiddleware.ActorFrom(ctx)
	dashboard, err := c.service.Dashboard(ctx.Request.Context(), actor)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, http.StatusOK, dashboard)
}
