package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func setup() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	ctrl := NewWilayaController()
	r.GET("/wilayas", ctrl.List)
	r.GET("/wilayas/:code", ctrl.Get)
	return r
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestWilayas(t *testing.T) {
	r := setup()

	w := get(r, "/wilayas")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"nom":"Alger"`)

	w = get(r, "/wilayas?format=options")
	assert.Contains(t, w.Body.String(), `"label":"16 - Alger"`)

	w = get(r, "/wilayas/9")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"09"`)

	w = get(r, "/wilayas/99")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "WILAYA_NOT_FOUND")
}
