package jwtmw

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

// TestMain はテスト実行前にGinをテストモードに設定します。
func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func serve(t *testing.T, authHeader string) (*httptest.ResponseRecorder, *gin.Context) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/refresh", nil)
	if authHeader != "" {
		c.Request.Header.Set("Authorization", authHeader)
	}
	AdminRequired()(c)
	return w, c
}

// TestEnabled はシークレットの有無で保護の有効・無効が切り替わることを検証します。
func TestEnabled(t *testing.T) {
	t.Setenv(EnvKeyJWTSecret, "")
	assert.False(t, Enabled())

	t.Setenv(EnvKeyJWTSecret, "s")
	assert.True(t, Enabled())
}

// TestAdminRequired_MissingBearerToken はBearerトークンがない場合に401が返されることを検証します。
func TestAdminRequired_MissingBearerToken(t *testing.T) {
	t.Setenv(EnvKeyJWTSecret, "test-secret")

	tests := []struct {
		name       string
		authHeader string
	}{
		{"no header", ""},
		{"basic auth", "Basic dXNlcjpwYXNz"},
		{"bearer lowercase", "bearer token123"},
		{"no space after Bearer", "Bearertoken123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, c := serve(t, tt.authHeader)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.True(t, c.IsAborted())
		})
	}
}

// TestAdminRequired_MissingSecret はシークレット未設定時に500が返されることを検証します。
func TestAdminRequired_MissingSecret(t *testing.T) {
	t.Setenv(EnvKeyJWTSecret, "")

	w, _ := serve(t, "Bearer sometoken")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

// TestAdminRequired_Tokens はトークンの内容ごとのステータスを検証します。
func TestAdminRequired_Tokens(t *testing.T) {
	const testSecret = "test-secret-key"
	t.Setenv(EnvKeyJWTSecret, testSecret)

	noneToken, _ := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub":  "ops",
		"role": RoleAdmin,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)

	tests := []struct {
		name       string
		token      string
		wantStatus int
		wantNext   bool
	}{
		{"malformed token", "not.a.valid.token", http.StatusUnauthorized, false},
		{"wrong secret", signToken("wrong-secret", RoleAdmin, time.Hour), http.StatusUnauthorized, false},
		{"expired token", signToken(testSecret, RoleAdmin, -time.Hour), http.StatusUnauthorized, false},
		{"none algorithm", noneToken, http.StatusUnauthorized, false},
		{"non admin role", signToken(testSecret, "viewer", time.Hour), http.StatusForbidden, false},
		{"valid admin", signToken(testSecret, RoleAdmin, time.Hour), http.StatusOK, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, c := serve(t, "Bearer "+tt.token)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, !tt.wantNext, c.IsAborted())
			if tt.wantNext {
				assert.Equal(t, "ops", c.GetString(ContextSubject))
			}
		})
	}
}

// signToken はテスト用の署名済みトークンを生成します。
func signToken(secret, role string, expiration time.Duration) string {
	signed, _ := NewGenerator(secret, expiration).GenerateToken("ops", role)
	return signed
}
