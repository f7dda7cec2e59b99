package dto

import "alpha_sentiment/internal/feature/solarnews/domain/entity"

// FailureResponse は {success:false, error} 形式のエラーボディです。
type FailureResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// SummaryResponse は简报生成APIのレスポンスです。
type SummaryResponse struct {
	Success bool           `json:"success"`
	Data    entity.Summary `json:"data"`
}
