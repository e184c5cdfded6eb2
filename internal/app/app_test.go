package app

import (
	"net"
	"net/http"
	"testing"

	"crm-pharma-core/internal/app/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"
)

func TestApplication_ServesUntilStopped(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	cfg := &config.Config{Server: config.ServerConfig{Host: "127.0.0.1", Port: 0}}
	a := NewApplication(cfg, r, zap.NewNop())
	lc := fxtest.NewLifecycle(t)
	a.Start(lc)

	lc.RequireStart()
	require.NotEmpty(t, a.Addr())

	resp, err := http.Get("http://" + a.Addr() + "/ping")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	lc.RequireStop()
	_, err = http.Get("http://" + a.Addr() + "/ping")
	assert.Error(t, err)
}

func TestApplication_PortTakenFailsStart(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	port := ln.Addr().(*net.TCPAddr).Port

	cfg := &config.Config{Server: config.ServerConfig{Host: "127.0.0.1", Port: port}}
	a := NewApplication(cfg, gin.New(), zap.NewNop())
	lc := fxtest.NewLifecycle(t)
	a.Start(lc)

	assert.Error(t, lc.Start(t.Context()))
}
