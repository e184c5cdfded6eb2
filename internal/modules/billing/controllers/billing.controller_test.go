package controllers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"crm-pharma-core/internal/domain/billing"
	"crm-pharma-core/internal/modules/billing/dto"
	authMiddleware "crm-pharma-core/internal/shared/middleware/auth"
	"crm-pharma-core/internal/shared/permissions"
	"crm-pharma-core/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type fakeInstallations struct {
	InstallationManager
	filters dto.ListFilters
}

func (f *fakeInstallations) List(_ context.Context, filters dto.ListFilters) ([]billing.Installation, error) {
	f.filters = filters
	return []billing.Installation{{ID: "i-1"}}, nil
}

func (f *fakeInstallations) Create(_ context.Context, _ permissions.Actor, req dto.InstallationRequest) (*dto.InstallationResponse, error) {
	return &dto.InstallationResponse{Installation: req.Installation("u-1"), ClientConverti: true}, nil
}

type fakePayments struct {
	PaymentManager
}

func (f *fakePayments) Balance(_ context.Context, clientID string) (billing.Balance, error) {
	if clientID == "missing" {
		return billing.Balance{}, response.NewNotFound("CLIENT_NOT_FOUND", "Client introuvable")
	}
	return billing.Balance{ResteAPayer: decimal.NewFromInt(2500)}, nil
}

type fakeSubscriptions struct {
	SubscriptionManager
}

func (f *fakeSubscriptions) Alerts(context.Context) ([]billing.Subscription, error) {
	return []billing.Subscription{{ID: "a-1", Statut: billing.SubscriptionEnAlerte}}, nil
}

func (f *fakeSubscriptions) RunRenewals(_ context.Context, actor permissions.Actor) (*dto.RenewalReport, error) {
	if !permissions.CanRunRenewals(actor) {
		return nil, response.NewForbidden("CANNOT_RUN_RENEWALS", "refusé")
	}
	return &dto.RenewalReport{Examinees: 3, Renouvelees: 1}, nil
}

func (f *fakeSubscriptions) Extend(_ context.Context, actor permissions.Actor, installationID string) (*billing.Subscription, error) {
	if !permissions.CanRunRenewals(actor) {
		return nil, response.NewForbidden("CANNOT_RUN_RENEWALS", "refusé")
	}
	return &billing.Subscription{ID: "a-2", InstallationID: installationID, Source: billing.SourceRenewal}, nil
}

func setup(actor permissions.Actor) (*gin.Engine, *fakeInstallations) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(authMiddleware.ContextActor, actor)
		c.Next()
	})

	installs := &fakeInstallations{}
	ic := NewInstallationController(installs)
	pc := NewPaymentController(&fakePayments{})
	sc := NewSubscriptionController(&fakeSubscriptions{})

	r.GET("/installations", ic.List)
	r.POST("/installations", ic.Create)
	r.GET("/clients/:id/reste-a-payer", pc.Balance)
	r.GET("/abonnements/alertes", sc.Alerts)
	r.POST("/abonnements/renouvellements", sc.Renewals)
	r.POST("/installations/:id/renouvellement", sc.Extend)
	return r, installs
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

var commercial = permissions.Actor{UserID: "u-com", Role: permissions.RoleCommercial}

func TestInstallations_ListFilter(t *testing.T) {
	r, fake := setup(commercial)

	w := do(r, http.MethodGet, "/installations?client_id=8c5e3a52-8d4f-4c1b-9a77-0d1f6f0a9b21", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "8c5e3a52-8d4f-4c1b-9a77-0d1f6f0a9b21", fake.filters.ClientID)

	w = do(r, http.MethodGet, "/installations?client_id=abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInstallations_Create(t *testing.T) {
	r, _ := setup(commercial)

	w := do(r, http.MethodPost, "/installations", `{"client_id":"nope"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/installations", `{"application_installee":"PharmaSoft","type":"acquisition","montant":"120000"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"client_converti":true`)
}

func TestBalance(t *testing.T) {
	r, _ := setup(commercial)

	w := do(r, http.MethodGet, "/clients/c-1/reste-a-payer", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"reste_a_payer":"2500"`)

	w = do(r, http.MethodGet, "/clients/missing/reste-a-payer", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubscriptions(t *testing.T) {
	r, _ := setup(commercial)

	w := do(r, http.MethodGet, "/abonnements/alertes", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":1`)

	w = do(r, http.MethodPost, "/abonnements/renouvellements", "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	admin, _ := setup(permissions.Actor{UserID: "u-adm", Role: permissions.RoleAdmin})
	w = do(admin, http.MethodPost, "/abonnements/renouvellements", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"renouvelees":1`)
}

func TestSubscriptions_Extend(t *testing.T) {
	r, _ := setup(commercial)
	w := do(r, http.MethodPost, "/installations/i-1/renouvellement", "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "CANNOT_RUN_RENEWALS")

	admin, _ := setup(permissions.Actor{UserID: "u-adm", Role: permissions.RoleAdmin})
	w = do(admin, http.MethodPost, "/installations/i-1/renouvellement", "")
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"installation_id":"i-1"`)
	assert.Contains(t, w.Body.String(), `"source":"RENOUVELLEMENT"`)
}
