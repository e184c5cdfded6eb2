package controllers

import (
	"net/http"

	"crm-pharma-core/internal/domain/wilaya"
	"crm-pharma-core/internal/shared/response"

	"github.com/gin-gonic/gin"
)

type WilayaController struct{}

func NewWilayaController() *WilayaController {
	return &WilayaController{}
}

// List - GET /api/v1/reference/wilayas[?format=options]
func (c *WilayaController) List(ctx *gin.Context) {
	if ctx.Query("format") == "options" {
		response.OK(ctx, http.StatusOK, wilaya.SelectOptions())
		return
	}
	response.OK(ctx, http.StatusOK, wilaya.All())
}

// Get - GET /api/v1/reference/wilayas/:code
func (c *WilayaController) Get(ctx *gin.Context) {
	w, ok := wilaya.Lookup(ctx.Param("code"))
	if !ok {
		response.Error(ctx, response.NewNotFound("WILAYA_NOT_FOUND", "Wilaya inconnue"))
		return
	}
	response.OK(ctx, http.StatusOK, w)
}
