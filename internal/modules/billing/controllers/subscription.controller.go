package controllers

import (
	"context"
	"net/http"

	"crm-pharma-core/internal/domain/billing"
	"crm-pharma-core/internal/modules/billing/dto"
	authMiddleware "crm-pharma-core/internal/shared/middleware/auth"
	"crm-pharma-core/internal/shared/permissions"
	"crm-pharma-core/internal/shared/response"

	"github.com/gin-gonic/gin"
)

type SubscriptionManager interface {
	List(ctx context.Context) ([]billing.Subscription, error)
	Alerts(ctx context.Context) ([]billing.Subscription, error)
	Stats(ctx context.Context) (billing.SubscriptionStats, error)
	RunRenewals(ctx context.Context, actor permissions.Actor) (*dto.RenewalReport, error)
	Extend(ctx context.Context, actor permissions.Actor, installationID string) (*billing.Subscription, error)
}

type SubscriptionController struct {
	service SubscriptionManager
}

func NewSubscriptionController(service SubscriptionManager) *SubscriptionController {
	return &SubscriptionController{service: service}
}

func (c *SubscriptionController) List(ctx *gin.Context) {
	c.respondList(ctx, c.service.List)
}

// Alerts - GET /api/v1/abonnements/alertes
func (c *SubscriptionController) Alerts(ctx *gin.Context) {
	c.respondList(ctx, c.service.Alerts)
}

func (c *SubscriptionController) Stats(ctx *gin.Context) {
	stats, err := c.service.Stats(ctx.Request.Context())
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, http.StatusOK, stats)
}

// Renewals - POST /api/v1/abonnements/renouvellements (admin)
func (c *SubscriptionController) Renewals(ctx *gin.Context) {
	actor, _ := authMiddleware.ActorFrom(ctx)
	report, err := c.service.RunRenewals(ctx.Request.Context(), actor)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, http.StatusOK, report)
}

// Extend - POST /api/v1/installations/:id/renouvellement (admin)
func (c *SubscriptionController) Extend(ctx *gin.Context) {
	actor, _ := authMiddleware.ActorFrom(ctx)
	sub, err := c.service.Extend(ctx.Request.Context(), actor, ctx.Param("id"))
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, http.StatusCreated, sub)
}

func (c *SubscriptionController) respondList(ctx *gin.Context, load func(context.Context) ([]billing.Subscription, error)) {
	list, err := load(ctx.Request.Context())
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
