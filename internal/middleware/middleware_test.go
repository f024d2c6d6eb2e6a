package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"loyaltycard/pkg/auth"
	"loyaltycard/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticVerifier map[string]string

func (v staticVerifier) VerifyTenantToken(ctx context.Context, token string) (string, error) {
	if tenantID, ok := v[token]; ok {
		return tenantID, nil
	}
	return "", errors.New("unknown token")
}

var _ auth.TenantVerifier = staticVerifier{}

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	chain := append(handlers, func(c *gin.Context) {
		c.String(http.StatusOK, GetTenantID(c))
	})
	r.GET("/", chain...)
	return r
}

func TestTenantAuthRequired(t *testing.T) {
	r := newRouter(TenantAuthRequired(staticVerifier{"good": "biz-1"}))

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{name: "valid", header: "Bearer good", status: http.StatusOK, body: "biz-1"},
		{name: "missing", status: http.StatusUnauthorized},
		{name: "not bearer", header: "Basic abc", status: http.StatusUnauthorized},
		{name: "rejected", header: "Bearer bad", status: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, w.Body.String())
			} else {
				assert.Contains(t, w.Body.String(), "UNAUTHORIZED")
			}
		})
	}
}

func TestPassKitAuthRequired(t *testing.T) {
	r := newRouter(PassKitAuthRequired("secret"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "ApplePass secret")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "ApplePass nope")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	for _, header := range []string{"secret", "Bearer secret", "applepass secret"} {
		req = httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", header)
		w = httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, header)
	}

	open := newRouter(PassKitAuthRequired(""))
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "ApplePass ")
	w = httptest.NewRecorder()
	open.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequestIDMiddleware(t *testing.T) {
	r := newRouter()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-42")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-42", w.Header().Get("X-Request-ID"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, w.Header().Get("X-Request-ID"), 36)
}

func TestLoggingMiddlewareTagsRequestID(t *testing.T) {
	log, err := logger.NewLogger(&logger.Config{Level: logger.InfoLevel, Format: "json"})
	require.NoError(t, err)
	var buf bytes.Buffer
	log.SetOutput(&buf)

	r := newRouter(LoggingMiddleware(log))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-99")
	r.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "API request processed", entry["message"])
	assert.Equal(t, "req-99", entry["request_id"])
	assert.Equal(t, float64(http.StatusOK), entry["status_code"])
}

func TestCORSMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"https://dash.example"}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://dash.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://dash.example", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
