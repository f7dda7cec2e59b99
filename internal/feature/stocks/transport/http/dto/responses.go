package dto

import "alpha_sentiment/internal/feature/stocks/domain/entity"

// HealthResponse はヘルスチェックのレスポンスDTOです。
type HealthResponse struct {
	Status     string  `json:"status"`
	Service    string  `json:"service"`
	Version    string  `json:"version"`
	DataStatus string  `json:"data_status"` // ok / no_data
	LastUpdate *string `json:"last_update"`
	StockCount int     `json:"stock_count"`
	Timestamp  string  `json:"timestamp"`
}

// RefreshResponse はデータ刷新受付のレスポンスDTOです。
type RefreshResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// HistoryResponse はスコア履歴のレスポンスDTOです。
type HistoryResponse struct {
	Code   string              `json:"code"`
	Days   int                 `json:"days"`
	Points []entity.ScorePoint `json:"points"`
}

// RunResponse は1回分の生成記録です。
type RunResponse struct {
	StartedAt  string `json:"started_at"`
	DurationMs int64  `json:"duration_ms"`
	Total      int    `json:"total"`
	Success    int    `json:"success"`
	Failed     int    `json:"failed"`
}

// RunsResponse は生成記録一覧のレスポンスDTOです。
type RunsResponse struct {
	Runs []RunResponse `json:"runs"`
}
