package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzip"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/temcen/hybrec/internal/config"
	"github.com/temcen/hybrec/internal/services"
	"github.com/temcen/hybrec/pkg/models"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

func errorCode(t *testing.T, body []byte) string {
	t.Helper()
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &response))
	return response["error"].(map[string]interface{})["code"].(string)
}

func TestAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cfg := config.Default()
	cfg.Auth.Enabled = true
	cfg.Auth.JWTSecret = "test-secret"
	authService := services.NewAuthService(cfg, quietLogger())

	token, err := authService.GenerateToken("client-7", "free", time.Hour)
	require.NoError(t, err)

	router := gin.New()
	router.Use(Auth(authService, quietLogger()))
	router.GET("/whoami", func(c *gin.Context) {
		c.String(http.StatusOK, ClientID(c))
	})

	tests := []struct {
		name           string
		header         string
		expectedStatus int
		expectedCode   string
	}{
		{name: "valid token", header: "Bearer " + token, expectedStatus: http.StatusOK},
		{name: "missing header", header: "", expectedStatus: http.StatusUnauthorized, expectedCode: "MISSING_AUTHORIZATION"},
		{name: "wrong scheme", header: "Basic abc", expectedStatus: http.StatusUnauthorized, expectedCode: "INVALID_AUTHORIZATION_FORMAT"},
		{name: "bad token", header: "Bearer abc.def.ghi", expectedStatus: http.StatusUnauthorized, expectedCode: "INVALID_TOKEN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodGet, "/whoami", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, errorCode(t, w.Body.Bytes()))
			} else {
				assert.Equal(t, "client-7", w.Body.String())
			}
		})
	}
}

// MockLimiter is a mock implementation of Limiter
type MockLimiter struct {
	mock.Mock
}

func (m *MockLimiter) IsAllowed(ctx context.Context, clientID string) (bool, *models.RateLimitInfo, error) {
	args := m.Called(ctx, clientID)
	info, _ := args.Get(1).(*models.RateLimitInfo)
	return args.Bool(0), info, args.Error(2)
}

func TestRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		allowed        bool
		info           *models.RateLimitInfo
		err            error
		expectedStatus int
	}{
		{name: "allowed", allowed: true, info: &models.RateLimitInfo{Limit: 10, Remaining: 4, ResetTime: 1700000000}, expectedStatus: http.StatusOK},
		{name: "exceeded", allowed: false, info: &models.RateLimitInfo{Limit: 10, Remaining: 0, ResetTime: 1700000000}, expectedStatus: http.StatusTooManyRequests},
		{name: "limiter failure fails open", err: errors.New("redis down"), expectedStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limiter := new(MockLimiter)
			limiter.On("IsAllowed", mock.Anything, "ip:192.0.2.1").Return(tt.allowed, tt.info, tt.err)

			router := gin.New()
			router.Use(RateLimit(limiter, quietLogger()))
			router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

			w := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodGet, "/ping", nil)
			req.RemoteAddr = "192.0.2.1:5555"
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.info != nil {
				assert.Equal(t, "10", w.Header().Get("X-RateLimit-Limit"))
			}
			if tt.expectedStatus == http.StatusTooManyRequests {
				assert.Equal(t, "RATE_LIMIT_EXCEEDED", errorCode(t, w.Body.Bytes()))
			}
			limiter.AssertExpectations(t)
		})
	}
}

func TestCompression(t *testing.T) {
	gin.SetMode(gin.TestMode)

	payload := strings.Repeat(`{"item_id":"B00ABC","title":"Stainless kettle"},`, 50)
	router := gin.New()
	router.Use(Compression(gzip.DefaultCompression))
	router.GET("/data", func(c *gin.Context) { c.String(http.StatusOK, payload) })

	t.Run("gzip accepted", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/data", nil)
		req.Header.Set("Accept-Encoding", "gzip, deflate")
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "gzip", w.Header().Get("Content-Encoding"))

		reader, err := gzip.NewReader(w.Body)
		require.NoError(t, err)
		decoded, err := io.ReadAll(reader)
		require.NoError(t, err)
		assert.Equal(t, payload, string(decoded))
	})

	t.Run("identity", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/data", nil)
		router.ServeHTTP(w, req)

		assert.Empty(t, w.Header().Get("Content-Encoding"))
		assert.Equal(t, payload, w.Body.String())
	})
}

func TestCompression_PreEncodedResponse(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(Compression(gzip.DefaultCompression))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/metrics", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"gzip"}, w.Header().Values("Content-Encoding"))

	reader, err := gzip.NewReader(w.Body)
	require.NoError(t, err)
	decoded, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Contains(t, string(decoded), "# HELP go_goroutines")
}

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(CORS(config.Default()))
	router.GET("/api/v1/popular", func(c *gin.Context) { c.JSON(http.StatusOK, []string{}) })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/popular", nil)
	req.Header.Set("Origin", "http://shop.example")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "X-Recommendation-Strategy")
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(Logger(quietLogger()), Recovery(quietLogger()))
	router.GET("/boom", func(c *gin.Context) { panic("scoring exploded") })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/boom", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "INTERNAL_SERVER_ERROR", errorCode(t, w.Body.Bytes()))
}
