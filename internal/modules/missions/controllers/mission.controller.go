package controllers

import (
	"context"
	"net/http"

	"crm-pharma-core/internal/domain/mission"
	"crm-pharma-core/internal/modules/missions/dto"
	authMiddleware "crm-pharma-core/internal/shared/middleware/auth"
	"crm-pharma-core/internal/shared/permissions"
	"crm-pharma-core/internal/shared/response"
	"crm-pharma-core/internal/shared/validation"

	"github.com/gin-gonic/gin"
)

// MissionManager opérations du service missions
type MissionManager interface {
	List(ctx context.Context, actor permissions.Actor, filters dto.ListFilters) ([]dto.MissionView, error)
	Delayed(ctx context.Context, actor permissions.Actor) ([]dto.MissionView, error)
	Get(ctx context.Context, actor permissions.Actor, id string) (*dto.MissionDetail, error)
	Actions(ctx context.Context, actor permissions.Actor, id string) (*dto.ActionsResponse, error)
	Create(ctx context.Context, actor permissions.Actor, req dto.CreateMissionRequest) (*dto.MissionDetail, error)
	Update(ctx context.Context, actor permissions.Actor, id string, req dto.UpdateMissionRequest) (*dto.MissionDetail, error)
	Delete(ctx context.Context, actor permissions.Actor, id string) error
	Start(ctx context.Context, actor permissions.Actor, id string) (*dto.MissionDetail, error)
	Close(ctx context.Context, actor permissions.Actor, id string, req dto.CloseRequest) (*dto.MissionDetail, error)
	Validate(ctx context.Context, actor permissions.Actor, id string, req dto.ValidateRequest) (*dto.MissionDetail, error)
	UpdateTechnical(ctx context.Context, actor permissions.Actor, id string, req dto.TechnicalRequest) (*dto.MissionDetail, error)
	UpdateFinancial(ctx context.Context, actor permissions.Actor, id string, req dto.FinancialRequest) (*dto.MissionDetail, error)
	ListExpenses(ctx context.Context, actor permissions.Actor, id string) (*dto.ExpensesResponse, error)
	AddExpense(ctx context.Context, actor permissions.Actor, id string, req dto.ExpenseRequest) (*dto.ExpenseResponse, error)
	UpdateExpense(ctx context.Context, actor permissions.Actor, id, expenseID string, req dto.ExpenseRequest) (*dto.ExpenseResponse, error)
	DeleteExpense(ctx context.Context, actor permissions.Actor, id, expenseID string) (*dto.ExpenseResponse, error)
	Report(ctx context.Context, actor permissions.Actor, id string) (*dto.ClosureReport, error)
	Journal(ctx context.Context, actor permissions.Actor, id string) (*dto.JournalResponse, error)
}

type MissionController struct {
	service   MissionManager
	validator *validation.Validator
}

func NewMissionController(service MissionManager) *MissionController {
	return &MissionController{service: service, validator: validation.New()}
}

// List - GET /api/v1/missions?q=&statut=
func (c *MissionController) List(ctx *gin.Context) {
	var filters dto.ListFilters
	if err := ctx.ShouldBindQuery(&filters); err != nil {
		response.Fail(ctx, http.StatusBadRequest, "INVALID_QUERY_PARAMS", "Paramètres invalides", nil)
		return
	}
	if filters.Statut != "" && filters.Statut != "all" {
		if _, ok := mission.ParseStatus(filters.Statut); !ok {
			response.Fail(ctx, http.StatusBadRequest, "INVALID_STATUS_FILTER", "Statut inconnu: "+filters.Statut, nil)
			return
		}
	}
	actor, _ := authMiddleware.ActorFrom(ctx)

	list, err := c.service.List(ctx.Request.Context(), actor, filters)
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

// Delayed - GET /api/v1/missions/delayed
func (c *MissionController) Delayed(ctx *gin.Context) {
	actor, _ := authMiddleware.ActorFrom(ctx)
	list, err := c.service.Delayed(ctx.Request.Context(), actor)
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

func (c *MissionController) Get(ctx *gin.Context) {
	actor, _ := authMiddleware.ActorFrom(ctx)
	m, err := c.service.Get(ctx.Request.Context(), actor, ctx.Param("id"))
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, http.StatusOK, m)
}

// Actions - GET /api/v1/missions/:id/actions
func (c *MissionController) Actions(ctx *gin.Context) {
	actor, _ := authMiddleware.ActorFrom(ctx)
	result, err := c.service.Actions(ctx.Request.Context(), actor, ctx.Param("id"))
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, http.StatusOK, result)
}

func (c *MissionController) Create(ctx *gin.Context) {
	var req dto.CreateMissionRequest
	if !c.bind(ctx, &req) {
		return
	}
	actor, _ := authMiddleware.ActorFrom(ctx)

	m, err := c.service.Create(ctx.Request.Context(), actor, req)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, http.StatusCreated, m)
}

func (c *MissionController) Update(ctx *gin.Context) {
	var req dto.UpdateMissionRequest
	if !c.bind(ctx, &req) {
		return
	}
	actor, _ := authMiddleware.ActorFrom(ctx)

	m, err := c.service.Update(ctx.Request.Context(), actor, ctx.Param("id"), req)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, http.StatusOK, m)
}

func (c *MissionController) Delete(ctx *gin.Context) {
	actor, _ := authMiddleware.ActorFrom(ctx)
	if err := c.service.Delete(ctx.Request.Context(), actor, ctx.Param("id")); err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, http.StatusOK, gin.H{"message": "Mission supprimée"})
}

// Start - POST /api/v1/missions/:id/start
func (c *MissionController) Start(ctx *gin.Context) {
	actor, _ := authMiddleware.ActorFrom(ctx)
	m, err := c.service.Start(ctx.Request.Context(), actor, ctx.Param("id"))
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, http.StatusOK, m)
}

// Close - POST /api/v1/missions/:id/close {"commentaire": "...", "avancement": 100}
func (c *MissionController) Close(ctx *gin.Context) {
	var req dto.CloseRequest
	if !c.bind(ctx, &req) {
		return
	}
	actor, _ := authMiddleware.ActorFrom(ctx)

	m, err := c.service.Close(ctx.Request.Context(), actor, ctx.Param("id"), req)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, http.StatusOK, m)
}

// Validate - POST /api/v1/missions/:id/validate {"commentaire": "...", "confirm": true}
func (c *MissionController) Validate(ctx *gin.Context) {
	var req dto.ValidateRequest
	if !c.bind(ctx, &req) {
		return
	}
	actor, _ := authMiddleware.ActorFrom(ctx)

	m, err := c.service.Validate(ctx.Request.Context(), actor, ctx.Param("id"), req)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, http.StatusOK, m)
}

func (c *MissionController) UpdateTechnical(ctx *gin.Context) {
	var req dto.TechnicalRequest
	if !c.bind(ctx, &req) {
		return
	}
	actor, _ := authMiddleware.ActorFrom(ctx)

	m, err := c.service.UpdateTechnical(ctx.Request.Context(), actor, ctx.Param("id"), req)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, http.StatusOK, m)
}

func (c *MissionController) UpdateFinancial(ctx *gin.Context) {
	var req dto.FinancialRequest
	if !c.bind(ctx, &req) {
		return
	}
	actor, _ := authMiddleware.ActorFrom(ctx)

	m, err := c.service.UpdateFinancial(ctx.Request.Context(), actor, ctx.Param("id"), req)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, http.StatusOK, m)
}

func (c *MissionController) ListExpenses(ctx *gin.Context) {
	actor, _ := authMiddleware.ActorFrom(ctx)
	result, err := c.service.ListExpenses(ctx.Request.Context(), actor, ctx.Param("id"))
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, http.StatusOK, result)
}

func (c *MissionController) AddExpense(ctx *gin.Context) {
	var req dto.ExpenseRequest
	if !c.bind(ctx, &req) {
		return
	}
	actor, _ := authMiddleware.ActorFrom(ctx)

	result, err := c.service.AddExpense(ctx.Request.Context(), actor, ctx.Param("id"), req)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, http.StatusCreated, result)
}

func (c *MissionController) UpdateExpense(ctx *gin.Context) {
	var req dto.ExpenseRequest
	if !c.bind(ctx, &req) {
		return
	}
	actor, _ := authMiddleware.ActorFrom(ctx)

	result, err := c.service.UpdateExpense(ctx.Request.Context(), actor, ctx.Param("id"), ctx.Param("expenseId"), req)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, http.StatusOK, result)
}

func (c *MissionController) DeleteExpense(ctx *gin.Context) {
	actor, _ := authMiddleware.ActorFrom(ctx)
	result, err := c.service.DeleteExpense(ctx.Request.Context(), actor, ctx.Param("id"), ctx.Param("expenseId"))
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, http.StatusOK, result)
}

// Report - GET /api/v1/missions/:id/report
func (c *MissionController) Report(ctx *gin.Context) {
	actor, _ := authMiddleware.ActorFrom(ctx)
	report, err := c.service.Report(ctx.Request.Context(), actor, ctx.Param("id"))
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, http.StatusOK, report)
}

func (c *MissionController) Journal(ctx *gin.Context) {
	actor, _ := authMiddleware.ActorFrom(ctx)
	result, err := c.service.Journal(ctx.Request.Context(), actor, ctx.Param("id"))
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, http.StatusOK, result)
}

func (c *MissionController) bind(ctx *gin.Context, req interface{}) bool {
	if err := ctx.ShouldBindJSON(req); err != nil {
		response.Fail(ctx, http.StatusBadRequest, "INVALID_REQUEST_FORMAT", "Format de requête invalide", nil)
		return false
	}
	if verr := c.validator.Struct(req); verr != nil {
		response.Error(ctx, verr)
		return false
	}
	return true
}
