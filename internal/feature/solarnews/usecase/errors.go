package usecase

import "errors"

var (
	// ErrInvalidNewsType は domestic / international 以外の区分を示します。
	ErrInvalidNewsType = errors.New("invalid news type")
	// ErrInvalidDate は絞り込み日付が YYYY-MM-DD でないことを示します。
	ErrInvalidDate = errors.New("invalid date, use YYYY-MM-DD")
	// ErrNoNews は简报を作るニュースが無いことを示します。
	ErrNoNews = errors.New("no news to summarize")
	// ErrSummarizerUnavailable はLLMが設定されていないことを示します。
	ErrSummarizerUnavailable = errors.New("summarizer is not configured")
)
