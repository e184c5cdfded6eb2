package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"crm-pharma-core/internal/domain/analysis"
	"crm-pharma-core/internal/modules/analysis/dto"
	authMiddleware "crm-pharma-core/internal/shared/middleware/auth"
	"crm-pharma-core/internal/shared/permissions"
	"crm-pharma-core/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type fakeAnalysis struct {
	AnalysisProvider
	actor permissions.Actor
}

func (f *fakeAnalysis) Missions(_ context.Context, actor permissions.Actor) (analysis.Insights, error) {
	f.actor = actor
	return analysis.Insights{Summary: analysis.Summary{TotalMissions: 4}}, nil
}

func (f *fakeAnalysis) Mission(_ context.Context, _ permissions.Actor, id string) (*analysis.MissionReport, error) {
	if id == "missing" {
		return nil, response.NewNotFound("MISSION_NOT_FOUND", "Mission introuvable")
	}
	return &analysis.MissionReport{}, nil
}

func (f *fakeAnalysis) Insights(context.Context, permissions.Actor) (*dto.MissionInsights, error) {
	return &dto.MissionInsights{Notification: "Insights IA indisponibles"}, nil
}

func (f *fakeAnalysis) Dashboard(context.Context, permissions.Actor) (*dto.Dashboard, error) {
	return &dto.Dashboard{Cache: true}, nil
}

func setup(actor permissions.Actor) (*gin.Engine, *fakeAnalysis) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(authMiddleware.ContextActor, actor)
		c.Next()
	})

	fake := &fakeAnalysis{}
	c := NewAnalysisController(fake)
	r.GET("/analysis/missions", c.Missions)
	r.GET("/analysis/missions/insights", c.Insights)
	r.GET("/analysis/missions/:id", c.Mission)
	r.GET("/analysis/dashboard", c.Dashboard)
	return r, fake
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestMissions_PassesActor(t *testing.T) {
	r, fake := setup(permissions.Actor{UserID: "u-tech", Role: permissions.RoleTechnicien})

	w := get(r, "/analysis/missions")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total_missions":4`)
	assert.Equal(t, "u-tech", fake.actor.UserID)
}

func TestMission_NotFound(t *testing.T) {
	r, _ := setup(permissions.Actor{UserID: "u-1", Role: permissions.RoleAdmin})

	assert.Equal(t, http.StatusNotFound, get(r, "/analysis/missions/missing").Code)
	assert.Equal(t, http.StatusOK, get(r, "/analysis/missions/m-1").Code)
}

func TestInsights_Notification(t *testing.T) {
	r, _ := setup(permissions.Actor{UserID: "u-1", Role: permissions.RoleAdmin})

	w := get(r, "/analysis/missions/insights")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"notification":"Insights IA indisponibles"`)
}

func TestDashboard(t *testing.T) {
	r, _ := setup(permissions.Actor{UserID: "u-1", Role: permissions.RoleAdmin})

	w := get(r, "/analysis/dashboard")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"cache":true`)
}
