package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"crm-pharma-core/internal/shared/permissions"
	"crm-pharma-core/internal/shared/validation"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func render(t *testing.T, err error) (int, map[string]interface{}) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	Error(c, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func code(body map[string]interface{}) string {
	return body["details"].(map[string]interface{})["code"].(string)
}

func TestError_Mapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", validation.FromFields(map[string]string{"titre": "requis"}), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"denied", &permissions.DeniedError{Code: "CANNOT_CLOSE_MISSION", Message: "refus"}, http.StatusForbidden, "CANNOT_CLOSE_MISSION"},
		{"schema", fmt.Errorf("missions: %w", &pgconn.PgError{Code: "42703"}), http.StatusServiceUnavailable, "SCHEMA_MIGRATION_REQUIRED"},
		{"not found", NewNotFound("MISSION_NOT_FOUND", "Mission introuvable"), http.StatusNotFound, "MISSION_NOT_FOUND"},
		{"conflict", NewConflict("INVALID_TRANSITION", errors.New("x")), http.StatusConflict, "INVALID_TRANSITION"},
		{"wrapped service", fmt.Errorf("ctx: %w", NewForbidden("ACCESS_DENIED", "non")), http.StatusForbidden, "ACCESS_DENIED"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := render(t, tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code(body))
		})
	}
}

func TestError_ValidationChamps(t *testing.T) {
	_, body := render(t, NewValidation(map[string]string{"budget_alloue": "Le budget doit être supérieur à 0"}))
	champs := body["details"].(map[string]interface{})["champs"].(map[string]interface{})
	assert.Equal(t, "Le budget doit être supérieur à 0", champs["budget_alloue"])
}

func TestOK(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	OK(c, http.StatusCreated, gin.H{"id": "1"})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"success": true, "data": {"id": "1"}}`, w.Body.String())
}
