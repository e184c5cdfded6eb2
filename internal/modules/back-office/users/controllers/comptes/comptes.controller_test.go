package comptes

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	dto "crm-pharma-core/internal/modules/back-office/users/dto/comptes"
	authMiddleware "crm-pharma-core/internal/shared/middleware/auth"
	"crm-pharma-core/internal/shared/permissions"
	"crm-pharma-core/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUsers struct {
	createErr   error
	lastFilters dto.ListUsersFilters
	lastActor   permissions.Actor
}

func (f *fakeUsers) CreateUser(_ context.Context, actor permissions.Actor, req dto.CreateUserRequest) (*dto.CreateUserResponse, error) {
	f.lastActor = actor
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &dto.CreateUserResponse{ID: "u-1", Email: req.Email}, nil
}

func (f *fakeUsers) ListUsers(_ context.Context, filters dto.ListUsersFilters) ([]dto.UserSummary, error) {
	f.lastFilters = filters
	return []dto.UserSummary{{ID: "u-1", Role: permissions.RoleTechnicien}}, nil
}

func (f *fakeUsers) GetUser(_ context.Context, id string) (*dto.UserSummary, error) {
	if id != "u-1" {
		return nil, response.NewNotFound("USER_NOT_FOUND", "Utilisateur introuvable")
	}
	return &dto.UserSummary{ID: id}, nil
}

func (f *fakeUsers) UpdateStatus(_ context.Context, actor permissions.Actor, _ string, _ dto.UpdateStatusRequest) error {
	f.lastActor = actor
	return nil
}

func setup(svc UserManager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(authMiddleware.ContextActor, permissions.Actor{UserID: "admin-1", Role: permissions.RoleAdmin})
		c.Next()
	})
	ctrl := NewComptesController(svc)
	r.GET("/users", ctrl.ListUsers)
	r.GET("/users/:id", ctrl.GetUser)
	r.POST("/users", ctrl.CreateUser)
	r.PATCH("/users/:id/statut", ctrl.UpdateStatus)
	return r
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestCreateUser(t *testing.T) {
	svc := &fakeUsers{}
	r := setup(svc)

	w := do(r, http.MethodPost, "/users", `{"email":"tech@crm.dz","nom":"Benali","role":"technicien"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"u-1"`)
	assert.Equal(t, "admin-1", svc.lastActor.UserID)

	w = do(r, http.MethodPost, "/users", `{"email":"tech@crm.dz","nom":"Benali","role":"pilote"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"role"`)

	w = do(r, http.MethodPost, "/users", `{"email":"tech@crm.dz","nom":"Benali","role":"technicien","password":"court"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"password"`)
}

func TestCreateUser_Conflict(t *testing.T) {
	r := setup(&fakeUsers{createErr: response.NewConflict("DUPLICATE_EMAIL", errors.New("cet email est déjà utilisé"))})

	w := do(r, http.MethodPost, "/users", `{"email":"tech@crm.dz","nom":"Benali","role":"technicien"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "DUPLICATE_EMAIL")
}

func TestListUsers_RoleFilter(t *testing.T) {
	svc := &fakeUsers{}
	r := setup(svc)

	w := do(r, http.MethodGet, "/users?role=chef_mission", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "chef_mission", svc.lastFilters.Role)

	w = do(r, http.MethodGet, "/users?role=pilote", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetUser_NotFound(t *testing.T) {
	r := setup(&fakeUsers{})

	w := do(r, http.MethodGet, "/users/inconnu", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "USER_NOT_FOUND")
}

func TestUpdateStatus(t *testing.T) {
	r := setup(&fakeUsers{})

	w := do(r, http.MethodPatch, "/users/u-1/statut", `{"statut":"inactif"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodPatch, "/users/u-1/statut", `{"statut":"suspendu"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
