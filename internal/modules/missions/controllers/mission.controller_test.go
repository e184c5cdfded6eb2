package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"crm-pharma-core/internal/domain/mission"
	"crm-pharma-core/internal/infrastructure/database/postgres/pgtest"
	"crm-pharma-core/internal/modules/missions/dto"
	"crm-pharma-core/internal/modules/missions/queries"
	"crm-pharma-core/internal/modules/missions/services"
	authMiddleware "crm-pharma-core/internal/shared/middleware/auth"
	"crm-pharma-core/internal/shared/permissions"
	"crm-pharma-core/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeMissions struct {
	MissionManager
	actor   permissions.Actor
	filters dto.ListFilters
}

func (f *fakeMissions) List(_ context.Context, actor permissions.Actor, filters dto.ListFilters) ([]dto.MissionView, error) {
	f.actor, f.filters = actor, filters
	return []dto.MissionView{{Mission: mission.Mission{ID: "m-1", Statut: mission.StatusEnCours}}}, nil
}

func (f *fakeMissions) Start(_ context.Context, actor permissions.Actor, id string) (*dto.MissionDetail, error) {
	m := &mission.Mission{ID: id, ChefMissionID: "u-chef", Statut: mission.StatusCreee}
	if err := permissions.Check(actor, m, permissions.ActionStart); err != nil {
		return nil, err
	}
	m.Statut = mission.StatusEnCours
	return &dto.MissionDetail{MissionView: dto.MissionView{Mission: *m}}, nil
}

func (f *fakeMissions) Close(_ context.Context, _ permissions.Actor, id string, req dto.CloseRequest) (*dto.MissionDetail, error) {
	if req.Commentaire == "" {
		return nil, response.NewValidation(map[string]string{"commentaire": "requis"})
	}
	return &dto.MissionDetail{MissionView: dto.MissionView{Mission: mission.Mission{ID: id, Statut: mission.StatusCloturee}}}, nil
}

func (f *fakeMissions) Validate(context.Context, permissions.Actor, string, dto.ValidateRequest) (*dto.MissionDetail, error) {
	return nil, response.NewConflict("NOT_CLOSED_BY_CHEF", mission.ErrNotClosedByChef)
}

func (f *fakeMissions) AddExpense(_ context.Context, _ permissions.Actor, id string, req dto.ExpenseRequest) (*dto.ExpenseResponse, error) {
	return &dto.ExpenseResponse{Expense: &mission.Expense{ID: "e-1", MissionID: id, Montant: req.Montant}}, nil
}

func setup(svc MissionManager, actor permissions.Actor) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(authMiddleware.ContextActor, actor)
		c.Next()
	})
	ctrl := NewMissionController(svc)
	r.GET("/missions", ctrl.List)
	r.GET("/missions/:id", ctrl.Get)
	r.POST("/missions/:id/start", ctrl.Start)
	r.POST("/missions/:id/close", ctrl.Close)
	r.POST("/missions/:id/validate", ctrl.Validate)
	r.POST("/missions/:id/expenses", ctrl.AddExpense)
	return r
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestList_PassesActorAndFilters(t *testing.T) {
	svc := &fakeMissions{}
	actor := permissions.Actor{UserID: "u-chef", Role: permissions.RoleChefMission}
	w := do(setup(svc, actor), http.MethodGet, "/missions?q=amel&statut=en_cours", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, actor, svc.actor)
	assert.Equal(t, dto.ListFilters{Query: "amel", Statut: "en_cours"}, svc.filters)

	var body struct {
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Total)
}

func TestStart_DeniedForOtherUser(t *testing.T) {
	other := permissions.Actor{UserID: "u-tech", Role: permissions.RoleTechnicien}
	w := do(setup(&fakeMissions{}, other), http.MethodPost, "/missions/m-1/start", "")

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "CANNOT_START_MISSION")
}

func TestStart_Chef(t *testing.T) {
	chef := permissions.Actor{UserID: "u-chef", Role: permissions.RoleChefMission}
	w := do(setup(&fakeMissions{}, chef), http.MethodPost, "/missions/m-1/start", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"statut":"en_cours"`)
}

func TestClose(t *testing.T) {
	r := setup(&fakeMissions{}, permissions.Actor{UserID: "u-chef", Role: permissions.RoleChefMission})

	w := do(r, http.MethodPost, "/missions/m-1/close", `{"commentaire":""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/missions/m-1/close", `{"commentaire":"Done","avancement":100}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodPost, "/missions/m-1/close", `{commentaire`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_REQUEST_FORMAT")
}

func TestValidate_Conflict(t *testing.T) {
	r := setup(&fakeMissions{}, permissions.Actor{UserID: "u-adm", Role: permissions.RoleAdmin})
	w := do(r, http.MethodPost, "/missions/m-1/validate", `{"commentaire":"OK","confirm":true}`)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_CLOSED_BY_CHEF")
}

func TestAddExpense_Created(t *testing.T) {
	r := setup(&fakeMissions{}, permissions.Actor{UserID: "u-chef", Role: permissions.RoleChefMission})
	w := do(r, http.MethodPost, "/missions/m-1/expenses", `{"type_depense":"transport","montant":"1500.50"}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"montant":"1500.5"`)
}

func TestList_UnknownStatusFilter(t *testing.T) {
	svc := &fakeMissions{}
	w := do(setup(svc, permissions.Actor{UserID: "u-adm", Role: permissions.RoleAdmin}), http.MethodGet, "/missions?statut=archivee", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_STATUS_FILTER")
	assert.Empty(t, svc.actor.UserID)

	w = do(setup(svc, permissions.Actor{UserID: "u-adm", Role: permissions.RoleAdmin}), http.MethodGet, "/missions?statut=all", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

// storedMission ligne missions lue par le vrai service
func storedMission() pgtest.Result {
	debut := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	return pgtest.Row(
		"m-1", "Installation confidentielle", "Détails internes", "p-1", "Pharmacie El Amel",
		"Installation", "16", debut, debut.AddDate(0, 1, 0), "haute",
		decimal.NewFromInt(90000), decimal.NewFromInt(12000), 40, "en_cours",
		"u-chef", []string{"u-acc"}, "u-adm", &debut,
		false, nil, "",
		false, nil, "",
		"",
		"", "", "", "", "", "",
		debut, debut,
	)
}

func TestGet_NonParticipantGetsNoMissionData(t *testing.T) {
	db := pgtest.New().Returns(queries.MissionQueries.Get, storedMission())
	svc := services.NewMissionService(db, db, nil, nil, zap.NewNop())

	for _, actor := range []permissions.Actor{
		{UserID: "u-tech", Role: permissions.RoleTechnicien},
		{UserID: "u-com", Role: permissions.RoleCommercial},
		{UserID: "u-compta", Role: permissions.RoleComptabilite},
	} {
		w := do(setup(svc, actor), http.MethodGet, "/missions/m-1", "")

		assert.Equal(t, http.StatusForbidden, w.Code, actor.Role)
		body := w.Body.String()
		assert.Contains(t, body, "ACCESS_DENIED")
		assert.NotContains(t, body, "confidentielle")
		assert.NotContains(t, body, "El Amel")
		assert.NotContains(t, body, `"data"`)
	}

	w := do(setup(svc, permissions.Actor{UserID: "u-acc", Role: permissions.RoleTechnicien}), http.MethodGet, "/missions/m-1", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "confidentielle")
}
