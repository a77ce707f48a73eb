package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/temcen/hybrec/internal/config"
	"github.com/temcen/hybrec/internal/services"
)

type staticStats services.EngineStats

func (s staticStats) Stats() services.EngineStats { return services.EngineStats(s) }

func TestHealthHandler_Check(t *testing.T) {
	gin.SetMode(gin.TestMode)

	stats := staticStats{
		Users:             2,
		Items:             3,
		InteractionsUsers: 1,
		CatalogItems:      3,
		WCF:               0.6,
		WContent:          0.4,
		MatrixShapes:      map[string]string{"user_factors": "2 × 2"},
	}
	healthService := services.NewHealthService(config.Default(), quietLogger(), stats, nil)
	handler := NewHealthHandler(quietLogger(), healthService)

	router := gin.New()
	router.GET("/api/v1/health", handler.Check)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/health", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "UP", body["status"])
	assert.Equal(t, 2.0, body["users"])
	assert.Equal(t, 3.0, body["items"])
	assert.Equal(t, 1.0, body["interactionsUsers"])
	weights := body["hybridWeights"].(map[string]interface{})
	assert.Equal(t, 0.6, weights["cf"])
	assert.Equal(t, 0.4, weights["content"])
}
