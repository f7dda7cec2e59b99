// Package jwtmw は管理用エンドポイントを保護するJWTミドルウェアを提供します。
package jwtmw

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"alpha_sentiment/internal/api"
)

const (
	// EnvKeyJWTSecret は署名検証に使うシークレットの環境変数名です。
	EnvKeyJWTSecret = "ADMIN_JWT_SECRET"
	// ContextSubject はgin.Contextに格納するsubクレームのキーです。
	ContextSubject = "jwtSubject"
)

// Enabled はADMIN_JWT_SECRETが設定され、管理エンドポイントの保護が有効かを返します。
func Enabled() bool {
	return os.Getenv(EnvKeyJWTSecret) != ""
}

// AdminRequired returns a Gin middleware that validates a bearer JWT
// signed with ADMIN_JWT_SECRET and requires the admin role.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Authorizationヘッダーを取得
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, api.ErrorResponse{Error: "missing bearer token"})
			return
		}
		tokenStr := strings.TrimPrefix(auth, "Bearer ")

		// 2. シークレットを環境変数から読み込む
		secret := os.Getenv(EnvKeyJWTSecret)
		if secret == "" {
			c.AbortWithStatusJSON(http.StatusInternalServerError, api.ErrorResponse{Error: "server misconfigured"})
			return
		}

		// 3. 署名を検証（HMACのみ許可）
		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, api.ErrorResponse{Error: "invalid token"})
			return
		}

		// 4. ロールを確認
		claims, _ := token.Claims.(jwt.MapClaims)
		if role, _ := claims["role"].(string); role != RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, api.ErrorResponse{Error: "admin role required"})
			return
		}
		if sub, ok := claims["sub"].(string); ok {
			c.Set(ContextSubject, sub)
		}

		c.Next()
	}
}
