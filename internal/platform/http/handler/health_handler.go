// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
)

// checkTimeout は1つの依存先チェックに許す最大時間です。
const checkTimeout = 2 * time.Second

// Checker は依存先（Redis、DBなど）の疎通を確認する関数です。
type Checker func(ctx context.Context) error

// HealthResponse は /healthz のレスポンスボディです。
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// NewHealth は /healthz 用のハンドラーを生成します。
// すべてのCheckerが成功すれば200 {"status":"ok"}、1つでも失敗すれば503 {"status":"degraded"} を返します。
// HEADは本文なし、OPTIONSは204を返し、いずれもキャッシュを禁止します。
func NewHealth(checks map[string]Checker) gin.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(c *gin.Context) {
		// 明示的にキャッシュを防止
		c.Header("Cache-Control", "no-store")

		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		resp := HealthResponse{Status: "ok"}
		code := http.StatusOK
		if len(names) > 0 {
			resp.Checks = make(map[string]string, len(names))
			for _, name := range names {
				ctx, cancel := context.WithTimeout(c.Request.Context(), checkTimeout)
				err := checks[name](ctx)
				cancel()
				if err != nil {
					resp.Checks[name] = err.Error()
					resp.Status = "degraded"
					code = http.StatusServiceUnavailable
					continue
				}
				resp.Checks[name] = "ok"
			}
		}

		if c.Request.Method == http.MethodHead {
			c.Status(code)
			return
		}
		c.JSON(code, resp)
	}
}
