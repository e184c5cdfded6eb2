package controllers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"crm-pharma-core/internal/modules/auth/dto"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type fakeAuth struct {
	loginErr  error
	loggedOut string
}

func (f *fakeAuth) Login(_ context.Context, req dto.LoginRequest, _, _ string) (*dto.LoginResponse, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &dto.LoginResponse{Token: "tok", User: dto.UserData{Email: req.Email}}, nil
}

func (f *fakeAuth) Logout(_ context.Context, token string) error {
	f.loggedOut = token
	return nil
}

func (f *fakeAuth) Me(_ context.Context, s *dto.SessionData) (*dto.MeResponse, error) {
	return &dto.MeResponse{User: dto.UserData{ID: s.UserID}}, nil
}

func (f *fakeAuth) ChangePassword(context.Context, string, dto.ChangePasswordRequest) error {
	return nil
}

func setup(svc Authenticator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	ctrl := NewAuthController(svc)
	r.POST("/login", ctrl.Login)
	r.POST("/logout", ctrl.Logout)
	return r
}

func post(r *gin.Engine, path, body, auth string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestLogin(t *testing.T) {
	r := setup(&fakeAuth{})

	w := post(r, "/login", `{"email":"chef@crm.dz","password":"motdepasse"}`, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"token":"tok"`)

	w = post(r, "/login", `{"email":"pas-un-email","password":"x"}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
	assert.Contains(t, w.Body.String(), `"email"`)

	w = post(r, "/login", `{`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogin_AuthErrors(t *testing.T) {
	tests := []struct {
		code   string
		status int
	}{
		{dto.CodeInvalidCredentials, http.StatusUnauthorized},
		{dto.CodeRateLimited, http.StatusTooManyRequests},
		{dto.CodeUserInactive, http.StatusForbidden},
	}
	for _, tt := range tests {
		r := setup(&fakeAuth{loginErr: dto.NewAuthError(tt.code, "refus", nil)})
		w := post(r, "/login", `{"email":"a@b.dz","password":"motdepasse"}`, "")
		assert.Equal(t, tt.status, w.Code, tt.code)
		assert.Contains(t, w.Body.String(), tt.code)
	}
}

func TestLogout_Idempotent(t *testing.T) {
	svc := &fakeAuth{}
	r := setup(svc)

	w := post(r, "/logout", "", "Bearer abc")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abc", svc.loggedOut)

	w = post(r, "/logout", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
