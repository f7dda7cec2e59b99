package usecase

import "errors"

var (
	// ErrSnapshotNotFound はスナップショットがまだ生成されていないことを示します。
	ErrSnapshotNotFound = errors.New("snapshot not found")
	// ErrNoNews は分析対象のニュースが無いことを示します。
	ErrNoNews = errors.New("no news to analyze")
	// ErrAnalyzerUnavailable はLLMが設定されていないことを示します。
	ErrAnalyzerUnavailable = errors.New("sentiment analyzer unavailable")
	// ErrUpstream は上流データソースの呼び出しに失敗したことを示します。
	ErrUpstream = errors.New("upstream request failed")
	// ErrDataSourceUnavailable はデータソースの疎通確認に失敗したことを示します。
	ErrDataSourceUnavailable = errors.New("data source unavailable")
	// ErrNoHotStocks は人気銘柄を1件も取得できなかったことを示します。
	ErrNoHotStocks = errors.New("no hot stocks fetched")
	// ErrGenerationInProgress は別のデータ生成が実行中であることを示します。
	ErrGenerationInProgress = errors.New("generation already in progress")
	// ErrHistoryUnavailable はスコア履歴のDBが構成されていないことを示します。
	ErrHistoryUnavailable = errors.New("score history unavailable")
)
