package usecase

import "errors"

var (
	// ErrNoPosts は処理対象の投稿が無いことを示します。
	ErrNoPosts = errors.New("no posts to analyze")
	// ErrReportNotFound は指定日のレポートが無いことを示します。
	ErrReportNotFound = errors.New("sentiment report not found")
	// ErrNoReports は履歴分析に使えるレポートが1件も無いことを示します。
	ErrNoReports = errors.New("no sentiment reports in range")
)
