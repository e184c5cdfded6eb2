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

type PaymentManager interface {
	List(ctx context.Context, filters dto.ListFilters) (*dto.PaymentList, error)
	ClientPayments(ctx context.Context, clientID string) (*dto.ClientPayments, error)
	Balance(ctx context.Context, clientID string) (billing.Balance, error)
	Create(ctx context.Context, actor permissions.Actor, req dto.PaymentRequest) (*billing.Payment, error)
	Update(ctx context.Context, actor permissions.Actor, id string, req dto.PaymentRequest) (*billing.Payment, error)
	Delete(ctx context.Context, actor permissions.Actor, id string) error
}

type PaymentController struct {
	service   PaymentManager
	validator *validation.Validator
}

func NewPaymentController(service PaymentManager) *PaymentController {
	return &PaymentController{service: service, validator: validation.New()}
}

// List - GET /api/v1/paiements?client_id=
func (c *PaymentController) List(ctx *gin.Context) {
	var filters dto.ListFilters
	if err := ctx.ShouldBindQuery(&filters); err != nil {
		response.Fail(ctx, http.StatusBadRequest, "INVALID_QUERY_PARAMS", "Paramètres invalides", nil)
		return
	}

	result, err := c.service.List(ctx.Request.Context(), filters)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result.Paiements,
		"total":   len(result.Paiements),
		"stats":   result.Stats,
	})
}

// ClientPayments - GET /api/v1/clients/:id/paiements
func (c *PaymentController) ClientPayments(ctx *gin.Context) {
	result, err := c.service.ClientPayments(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, http.StatusOK, result)
}

// Balance - GET /api/v1/clients/:id/reste-a-payer
func (c *PaymentController) Balance(ctx *gin.Context) {
	balance, err := c.service.Balance(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, http.StatusOK, balance)
}

func (c *PaymentController) Create(ctx *gin.Context) {
	var req dto.PaymentRequest
	if !bind(ctx, c.validator, &req) {
		return
	}
	actor, _ := authMiddleware.ActorFrom(ctx)

	p, err := c.service.Create(ctx.Request.Context(), actor, req)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, http.StatusCreated, p)
}

func (c *PaymentController) Update(ctx *gin.Context) {
	var req dto.PaymentRequest
	if !bind(ctx, c.validator, &req) {
		return
	}
	actor, _ := authMiddleware.ActorFrom(ctx)

	p, err := c.service.Update(ctx.Request.Context(), actor, ctx.Param("id"), req)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, http.StatusOK, p)
}

func (c *PaymentController) Delete(ctx *gin.Context) {
	actor, _ := authMiddleware.ActorFrom(ctx)
	if err := c.service.Delete(ctx.Request.Context(), actor, ctx.Param("id")); err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, http.StatusOK, gin.H{"message": "Paiement supprimé"})
}
