package controllers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"crm-pharma-core/internal/domain/prospect"
	"crm-pharma-core/internal/modules/prospects/dto"
	authMiddleware "crm-pharma-core/internal/shared/middleware/auth"
	"crm-pharma-core/internal/shared/permissions"
	"crm-pharma-core/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type fakeProspects struct {
	ProspectManager
	filters dto.ListFilters
	skip    bool
}

func (f *fakeProspects) List(_ context.Context, filters dto.ListFilters) ([]prospect.Prospect, error) {
	f.filters = filters
	return []prospect.Prospect{{ID: "p-1", RaisonSociale: "Pharmacie El Amel"}}, nil
}

func (f *fakeProspects) Stats(context.Context) (prospect.Stats, error) {
	return prospect.Stats{Total: 3, Prospects: 2, Actifs: 1}, nil
}

func (f *fakeProspects) Convert(_ context.Context, _ permissions.Actor, id string, req dto.ConvertRequest) (*dto.ConvertResponse, error) {
	if !req.Confirm {
		return nil, response.NewInvalid("CONFIRMATION_REQUIRED", prospect.ErrConfirmationMissing)
	}
	return &dto.ConvertResponse{Prospect: &prospect.Prospect{ID: id, Statut: prospect.StatusActif}}, nil
}

func (f *fakeProspects) AddHistory(_ context.Context, _ permissions.Actor, _ string, req dto.HistoryRequest) (*dto.HistoryResponse, error) {
	return &dto.HistoryResponse{Skipped: f.skip}, nil
}

func setup(svc ProspectManager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(authMiddleware.ContextActor, permissions.Actor{UserID: "u-1", Role: permissions.RoleCommercial})
		c.Next()
	})
	ctrl := NewProspectController(svc)
	r.GET("/prospects", ctrl.List)
	r.GET("/prospects/stats", ctrl.Stats)
	r.POST("/prospects/:id/convert", ctrl.Convert)
	r.POST("/prospects/:id/history", ctrl.AddHistory)
	return r
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestList(t *testing.T) {
	svc := &fakeProspects{}
	r := setup(svc)

	w := do(r, http.MethodGet, "/prospects?q=amel&statut=prospect&wilaya=16", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":1`)
	assert.Equal(t, dto.ListFilters{Query: "amel", Statut: "prospect", Wilaya: "16"}, svc.filters)
}

func TestStats(t *testing.T) {
	w := do(setup(&fakeProspects{}), http.MethodGet, "/prospects/stats", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"actifs":1`)
}

func TestConvert(t *testing.T) {
	r := setup(&fakeProspects{})

	w := do(r, http.MethodPost, "/prospects/p-1/convert", `{"confirm":true}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"statut":"actif"`)

	w = do(r, http.MethodPost, "/prospects/p-1/convert", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "CONFIRMATION_REQUIRED")
}

func TestAddHistory_SkippedIsNotAnError(t *testing.T) {
	w := do(setup(&fakeProspects{skip: true}), http.MethodPost, "/prospects/p-1/history", `{"action":"appel"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"skipped":true`)

	w = do(setup(&fakeProspects{}), http.MethodPost, "/prospects/p-1/history", `{"action":"appel"}`)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = do(setup(&fakeProspects{}), http.MethodPost, "/prospects/p-1/history", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
