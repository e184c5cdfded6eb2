package controllers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"crm-pharma-core/internal/domain/billing"
	"crm-pharma-core/internal/modules/applications/dto"
	"crm-pharma-core/internal/shared/permissions"
	"crm-pharma-core/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type fakeCatalog struct {
	includeInactive bool
	created         dto.ApplicationRequest
}

func (f *fakeCatalog) List(_ context.Context, includeInactive bool) ([]billing.Application, error) {
	f.includeInactive = includeInactive
	return []billing.Application{{ID: "app-1", Nom: "ParaStock", Prix: decimal.NewFromInt(90000)}}, nil
}

func (f *fakeCatalog) Get(_ context.Context, id string) (*billing.Application, error) {
	return nil, response.NewNotFound("APPLICATION_NOT_FOUND", "Application introuvable")
}

func (f *fakeCatalog) Create(_ context.Context, _ permissions.Actor, req dto.ApplicationRequest) (*billing.Application, error) {
	f.created = req
	return &billing.Application{ID: "app-2", Nom: req.Nom, Prix: req.Prix}, nil
}

func (f *fakeCatalog) Update(context.Context, permissions.Actor, string, dto.ApplicationRequest) (*billing.Application, error) {
	return nil, nil
}

func (f *fakeCatalog) Delete(context.Context, permissions.Actor, string) error { return nil }

func setup(svc Catalog) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	ctrl := NewApplicationController(svc)
	r.GET("/applications", ctrl.List)
	r.GET("/applications/:id", ctrl.Get)
	r.POST("/applications", ctrl.Create)
	return r
}

func TestApplications(t *testing.T) {
	svc := &fakeCatalog{}
	r := setup(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/applications?all=true", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, svc.includeInactive)
	assert.Contains(t, w.Body.String(), `"prix":"90000"`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/applications/x", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/applications", bytes.NewBufferString(`{"nom":"Compta DZ","prix":"45000.50"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, svc.created.Prix.Equal(decimal.RequireFromString("45000.50")))

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/applications", bytes.NewBufferString(`{"prix":10}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"nom"`)
}
