// Package usecase は人気銘柄の取得、LLM感情分析、スナップショット生成のビジネスロジックを実装します。
package usecase

import (
	"context"
	"time"

	"alpha_sentiment/internal/feature/alert"
	"alpha_sentiment/internal/feature/stocks/domain/entity"
)

// インターフェースはGoの慣例に従い、利用者（usecase）側で定義します。

// MarketDataFetcher は上流の相場データソースを抽象化します。
type MarketDataFetcher interface {
	VerifyDataSource(ctx context.Context) bool
	GetHotStocks(ctx context.Context, limit int) ([]entity.HotStock, error)
	GetKline(ctx context.Context, code string, days int) ([]entity.KlineData, error)
	FetchAllNews(ctx context.Context) ([]entity.RawNews, error)
	FetchAllRatings(ctx context.Context) (map[string]entity.StockRating, error)
}

// ChatModel はsystem/userプロンプトで1回の補完を行うLLMクライアントです。
type ChatModel interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// NewsAnalyzer は銘柄ニュースの感情分析を行います。
type NewsAnalyzer interface {
	AnalyzeNews(ctx context.Context, stockName string, news []entity.NewsData) (entity.SentimentAnalysis, error)
}

// SnapshotWriter はスナップショットファイルを書き込みます。
type SnapshotWriter interface {
	EnsureDir() error
	WriteHotStocks(snap entity.HotStocksSnapshot) error
	WriteStock(code string, snap entity.StockSnapshot) error
	DeleteAll() (int, error)
}

// SnapshotReader はスナップショットを読み込みます。
type SnapshotReader interface {
	ReadHotStocks(ctx context.Context) (entity.HotStocksSnapshot, error)
	ReadStock(ctx context.Context, code string) (entity.StockSnapshot, error)
}

// SnapshotCache はスナップショットの読み取りキャッシュを無効化します。
type SnapshotCache interface {
	Invalidate(ctx context.Context) error
}

// HistoryRecorder は生成結果と日次スコアを記録します。
type HistoryRecorder interface {
	RecordRun(ctx context.Context, report entity.RunReport, date string, scores []entity.StockScore) error
}

// SnapshotIndex はディスク上のスナップショットの一覧情報を返します。
type SnapshotIndex interface {
	LastUpdated() (string, error)
	ListCodes() ([]string, error)
}

// HistoryReader は銘柄の日次スコア履歴と生成記録を返します。
type HistoryReader interface {
	ScoreHistory(ctx context.Context, code string, days int) ([]entity.ScorePoint, error)
	LatestRuns(ctx context.Context, n int) ([]entity.RunReport, error)
}

// EventPublisher はスナップショット更新をクライアントへ通知します。
type EventPublisher interface {
	Publish(ev entity.SnapshotEvent)
}

// Notifier は運用者へアラートを送信します。
type Notifier interface {
	Notify(ctx context.Context, a alert.Alert) error
}

// TradingSessions は引け済みの直近取引日を計算します。
type TradingSessions interface {
	LatestClosedSession(now time.Time) time.Time
	Location() *time.Location
}
