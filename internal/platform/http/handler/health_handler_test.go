package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func setupRouter(checks map[string]Checker) *gin.Engine {
	h := NewHealth(checks)
	r := gin.New()
	r.GET("/healthz", h)
	r.HEAD("/healthz", h)
	r.OPTIONS("/healthz", h)
	r.POST("/healthz", h)
	return r
}

func TestHealth_NoCheckers(t *testing.T) {
	t.Parallel()

	router := setupRouter(nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}

func TestHealth_CheckerResults(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		checks       map[string]Checker
		expectedCode int
		expectedBody string
	}{
		{
			name: "all checks healthy",
			checks: map[string]Checker{
				"redis": func(ctx context.Context) error { return nil },
				"db":    func(ctx context.Context) error { return nil },
			},
			expectedCode: http.StatusOK,
			expectedBody: `{"status":"ok","checks":{"redis":"ok","db":"ok"}}`,
		},
		{
			name: "one check failing degrades status",
			checks: map[string]Checker{
				"redis": func(ctx context.Context) error { return errors.New("connection refused") },
				"db":    func(ctx context.Context) error { return nil },
			},
			expectedCode: http.StatusServiceUnavailable,
			expectedBody: `{"status":"degraded","checks":{"redis":"connection refused","db":"ok"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			router := setupRouter(tt.checks)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			assert.Equal(t, tt.expectedCode, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
		})
	}
}

func TestHealth_HEAD(t *testing.T) {
	t.Parallel()

	router := setupRouter(nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodHead, "/healthz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, w.Body.Len(), "HEAD should have no body")
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}

func TestHealth_OPTIONS(t *testing.T) {
	t.Parallel()

	called := false
	router := setupRouter(map[string]Checker{
		"redis": func(ctx context.Context) error { called = true; return nil },
	})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/healthz", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.False(t, called, "OPTIONS must not run checks")
}

func TestHealth_POST(t *testing.T) {
	t.Parallel()

	router := setupRouter(nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/healthz", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}
