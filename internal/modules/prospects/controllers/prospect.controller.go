package controllers

import (
	"context"
	"net/http"

	"crm-pharma-core/internal/domain/prospect"
	"crm-pharma-core/internal/modules/prospects/dto"
	authMiddleware "crm-pharma-core/internal/shared/middleware/auth"
	"crm-pharma-core/internal/shared/permissions"
	"crm-pharma-core/internal/shared/response"
	"crm-pharma-core/internal/shared/validation"

	"github.com/gin-gonic/gin"
)

// ProspectManager opérations du service prospects
type ProspectManager interface {
	List(ctx context.Context, filters dto.ListFilters) ([]prospect.Prospect, error)
	Stats(ctx context.Context) (prospect.Stats, error)
	Get(ctx context.Context, id string) (*prospect.Prospect, error)
	Create(ctx context.Context, actor permissions.Actor, req dto.ProspectRequest) (*prospect.Prospect, error)
	Update(ctx context.Context, actor permissions.Actor, id string, req dto.ProspectRequest) (*prospect.Prospect, error)
	Delete(ctx context.Context, actor permissions.Actor, id string) error
	Convert(ctx context.Context, actor permissions.Actor, id string, req dto.ConvertRequest) (*dto.ConvertResponse, error)
	History(ctx context.Context, id string) ([]prospect.HistoryEntry, error)
	AddHistory(ctx context.Context, actor permissions.Actor, id string, req dto.HistoryRequest) (*dto.HistoryResponse, error)
	DeleteHistory(ctx context.Context, actor permissions.Actor, id, entryID string) error
	Journal(ctx context.Context, actor permissions.Actor, id string) (*dto.JournalResponse, error)
}

type ProspectController struct {
	service   ProspectManager
	validator *validation.Validator
}

func NewProspectController(service ProspectManager) *ProspectController {
	return &ProspectController{service: service, validator: validation.New()}
}

// List - GET /api/v1/prospects?q=&statut=&secteur=&wilaya=&temperature=
func (c *ProspectController) List(ctx *gin.Context) {
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

// Stats - GET /api/v1/prospects/stats
func (c *ProspectController) Stats(ctx *gin.Context) {
	stats, err := c.service.Stats(ctx.Request.Context())
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, http.StatusOK, stats)
}

func (c *ProspectController) Get(ctx *gin.Context) {
	p, err := c.service.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, http.StatusOK, p)
}

func (c *ProspectController) Create(ctx *gin.Context) {
	var req dto.ProspectRequest
	if !c.bind(ctx, &req) {
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

func (c *ProspectController) Update(ctx *gin.Context) {
	var req dto.ProspectRequest
	if !c.bind(ctx, &req) {
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

func (c *ProspectController) Delete(ctx *gin.Context) {
	actor, _ := authMiddleware.ActorFrom(ctx)
	if err := c.service.Delete(ctx.Request.Context(), actor, ctx.Param("id")); err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, http.StatusOK, gin.H{"message": "Prospect supprimé"})
}

// Convert - POST /api/v1/prospects/:id/convert {"confirm": true}
func (c *ProspectController) Convert(ctx *gin.Context) {
	var req dto.ConvertRequest
	if !c.bind(ctx, &req) {
		return
	}
	actor, _ := authMiddleware.ActorFrom(ctx)

	result, err := c.service.Convert(ctx.Request.Context(), actor, ctx.Param("id"), req)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, http.StatusOK, result)
}

func (c *ProspectController) History(ctx *gin.Context) {
	entries, err := c.service.History(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, http.StatusOK, entries)
}

func (c *ProspectController) AddHistory(ctx *gin.Context) {
	var req dto.HistoryRequest
	if !c.bind(ctx, &req) {
		return
	}
	actor, _ := authMiddleware.ActorFrom(ctx)

	result, err := c.service.AddHistory(ctx.Request.Context(), actor, ctx.Param("id"), req)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	status := http.StatusCreated
	if result.Skipped {
		status = http.StatusOK
	}
	response.OK(ctx, status, result)
}

func (c *ProspectController) DeleteHistory(ctx *gin.Context) {
	actor, _ := authMiddleware.ActorFrom(ctx)
	if err := c.service.DeleteHistory(ctx.Request.Context(), actor, ctx.Param("id"), ctx.Param("entryId")); err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, http.StatusOK, gin.H{"message": "Entrée supprimée"})
}

// Journal - GET /api/v1/prospects/:id/journal (admin)
func (c *ProspectController) Journal(ctx *gin.Context) {
	actor, _ := authMiddleware.ActorFrom(ctx)
	result, err := c.service.Journal(ctx.Request.Context(), actor, ctx.Param("id"))
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, http.StatusOK, result)
}

func (c *ProspectController) bind(ctx *gin.Context, req interface{}) bool {
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
