// Package api はフィーチャー間で共有するHTTPレスポンス型を定義します。
package api

// ErrorResponse はエラー時に返却するJSONボディです。
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse は受理・完了などの状態通知に使うJSONボディです。
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
