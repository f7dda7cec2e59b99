// Package eastmoney は東方財富（人気ランキング、日足、千股千評）と財新ニュースの取得クライアントです。
package eastmoney

import (
	"time"

	"alpha_sentiment/internal/shared/env"
)

// 上流エンドポイント
const (
	DefaultHotRankURL = "https://emappdata.eastmoney.com/stockrank/getAllCurrentList"
	DefaultQuoteURL   = "https://push2.eastmoney.com/api/qt/ulist.np/get"
	DefaultKlineURL   = "https://push2his.eastmoney.com/api/qt/stock/kline/get"
	DefaultRatingURL  = "https://datacenter-web.eastmoney.com/api/data/v1/get"
	DefaultNewsURL    = "https://cxdata.caixin.com/api/dataplus/sjtPc/news"
)

// Config は取得クライアントの設定です。
type Config struct {
	HotRankURL string
	QuoteURL   string
	KlineURL   string
	RatingURL  string
	NewsURL    string

	Timeout           time.Duration
	MaxRetries        int           // 1リクエストあたりの試行回数
	RetryDelay        time.Duration // 線形バックオフの基準時間
	RequestsPerMinute int           // 0以下で制限なし

	RatingPageSize int
	NewsPageSize   int
	MaxRatingPages int
}

// DefaultConfig は本番エンドポイントを指す既定設定を返します。
func DefaultConfig() Config {
	return Config{
		HotRankURL:        DefaultHotRankURL,
		QuoteURL:          DefaultQuoteURL,
		KlineURL:          DefaultKlineURL,
		RatingURL:         DefaultRatingURL,
		NewsURL:           DefaultNewsURL,
		Timeout:           15 * time.Second,
		MaxRetries:        5,
		RetryDelay:        2 * time.Second,
		RequestsPerMinute: 120,
		RatingPageSize:    500,
		NewsPageSize:      100,
		MaxRatingPages:    20,
	}
}

// LoadConfig は環境変数で再試行設定を上書きした設定を返します。
func LoadConfig() Config {
	cfg := DefaultConfig()
	cfg.MaxRetries = env.Int("ALPHA_SENTIMENT_MAX_RETRIES", cfg.MaxRetries)
	cfg.RetryDelay = env.Duration("ALPHA_SENTIMENT_RETRY_DELAY", cfg.RetryDelay)
	cfg.RequestsPerMinute = env.Int("ALPHA_SENTIMENT_UPSTREAM_RPM", cfg.RequestsPerMinute)
	return cfg
}
