package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSystemRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewSystemHandler()
	r := gin.New()
	r.GET("/system/info", h.GetSystemInfo)
	r.GET("/system/ping", h.Ping)
	return r
}

func TestSystemHandler_GetSystemInfo(t *testing.T) {
	r := setupSystemRouter()

	w := doRequest(r, http.MethodGet, "/system/info")

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool               `json:"success"`
		Data    SystemInfoResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "StoreOps Backend API", resp.Data.Name)
	assert.NotEmpty(t, resp.Data.Version)
	assert.NotEmpty(t, resp.Data.GoVersion)
	assert.NotEmpty(t, resp.Data.Uptime)
}

func TestSystemHandler_Ping(t *testing.T) {
	r := setupSystemRouter()

	w := doRequest(r, http.MethodGet, "/system/ping")

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data PingResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "pong", resp.Data.Message)
	assert.NotEmpty(t, resp.Data.Timestamp)
}
