// Package router はHTTPルーティングを定義します。
package router

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	sentimenthandler "alpha_sentiment/internal/feature/marketsentiment/transport/handler"
	solarhandler "alpha_sentiment/internal/feature/solarnews/transport/handler"
	stockshandler "alpha_sentiment/internal/feature/stocks/transport/handler"
	"alpha_sentiment/internal/feature/stocks/transport/ws"
	platformhandler "alpha_sentiment/internal/platform/http/handler"
	jwtmw "alpha_sentiment/internal/platform/jwt"
)

// Handlers はルーターに登録するハンドラー一式です。
type Handlers struct {
	Stocks    *stockshandler.StockHandler
	Hub       *ws.Hub
	Sentiment *sentimenthandler.SentimentHandler
	Solar     *solarhandler.NewsHandler
	Checkers  map[string]platformhandler.Checker
	// DataDir はスナップショットを /data で公開するディレクトリです。空なら公開しません。
	DataDir string
}

// NewRouter は全フィーチャーのルートを登録したginエンジンを生成します。
// 更新系と運用系のルートは ADMIN_JWT_SECRET が設定されている場合に管理者JWTを要求します。
func NewRouter(h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(cors.Default())

	// 導通確認用
	health := platformhandler.NewHealth(h.Checkers)
	r.GET("/healthz", health)
	r.HEAD("/healthz", health)
	r.OPTIONS("/healthz", health)

	api := r.Group("/api")
	{
		api.GET("/health", h.Stocks.Health)
		api.GET("/hot_stocks", h.Stocks.HotStocks)
		api.GET("/stock/:code", h.Stocks.Stock)
		api.GET("/stock/:code/history", h.Stocks.History)

		api.GET("/market_sentiment", h.Sentiment.Report)
		api.GET("/market_sentiment/history", h.Sentiment.History)

		api.GET("/news", h.Solar.Domestic)
		api.GET("/news/stats", h.Solar.DomesticStats)
		api.GET("/international", h.Solar.International)
		api.GET("/international/stats", h.Solar.InternationalStats)
		api.GET("/summary/:type", h.Solar.Summary)

		if h.Hub != nil {
			api.GET("/ws", h.Hub.ServeWS)
		}
	}
	// 旧クライアント向けの別名
	r.GET("/health", h.Stocks.Health)

	// 管理者用のルート
	// ADMIN_JWT_SECRET が設定されている場合だけ JWT を要求する
	admin := r.Group("/api")
	if jwtmw.Enabled() {
		admin.Use(jwtmw.AdminRequired())
	}
	{
		admin.POST("/refresh", h.Stocks.Refresh)
		admin.POST("/summary/:type", h.Solar.RegenerateSummary)
		admin.GET("/admin/runs", h.Stocks.Runs)
	}

	if h.DataDir != "" {
		r.StaticFS("/data", http.Dir(h.DataDir))
	}
	return r
}
