package di

import (
	"time"

	"alpha_sentiment/internal/feature/alert"
	stocksadapters "alpha_sentiment/internal/feature/stocks/adapters"
	"alpha_sentiment/internal/feature/stocks/adapters/eastmoney"
	"alpha_sentiment/internal/feature/stocks/adapters/snapshot"
	"alpha_sentiment/internal/feature/stocks/transport/handler"
	"alpha_sentiment/internal/feature/stocks/transport/ws"
	"alpha_sentiment/internal/feature/stocks/usecase"
	"alpha_sentiment/internal/platform/cache"
	infrahttp "alpha_sentiment/internal/platform/http"
	"alpha_sentiment/internal/shared/ratelimiter"
)

// Stocks は人気銘柄フィーチャーの組み立て結果です。
type Stocks struct {
	Store     *snapshot.Store
	Generator *usecase.GenerateUsecase
	Scheduler *usecase.RefreshScheduler
	Handler   *handler.StockHandler
	Hub       *ws.Hub
}

// NewStocks は取得クライアント、分析、スナップショット、キャッシュ、履歴、通知を配線します。
// hub がnilの場合、更新イベントは配信しません。
func NewStocks(inf *Infra, hub *ws.Hub) *Stocks {
	cfg := eastmoney.LoadConfig()
	fetcher := eastmoney.NewClient(cfg,
		infrahttp.NewHTTPClient(cfg.Timeout),
		ratelimiter.NewRateLimiter(cfg.RequestsPerMinute, time.Minute))

	store := snapshot.NewStore(snapshot.LoadDataDir())

	// オプショナルな依存は型付きnilを渡さないよう、インターフェース変数で受ける
	var (
		reader  usecase.SnapshotReader = store
		snapC   usecase.SnapshotCache
		history usecase.HistoryRecorder
		scores  usecase.HistoryReader
		events  usecase.EventPublisher
		model   usecase.ChatModel
	)
	if inf.Redis != nil {
		cached := cache.NewCachingSnapshotReader(inf.Redis, cache.UntilNextRefresh(inf.Location), store, "snapshots")
		reader, snapC = cached, cached
	}
	if inf.DB != nil {
		repo := stocksadapters.NewHistoryRepository(inf.DB)
		history, scores = repo, repo
	}
	if hub != nil {
		events = hub
	}
	if inf.LLM.Analyzer != nil {
		model = inf.LLM.Analyzer
	}

	gen := usecase.NewGenerateUsecase(usecase.LoadGenerateConfig(), fetcher, usecase.NewAnalyzer(model),
		store, history, snapC, events)

	var notifier usecase.Notifier
	if n := alert.NewWebhookNotifier(alert.LoadWebhookURL(), infrahttp.NewHTTPClient(10*time.Second)); n.Enabled() {
		notifier = n
	}
	sched := usecase.NewRefreshScheduler(gen, reader, inf.Calendar, notifier, usecase.LoadSchedule())

	return &Stocks{
		Store:     store,
		Generator: gen,
		Scheduler: sched,
		Handler:   handler.NewStockHandler(usecase.NewQueryUsecase(reader, store, scores), gen, inf.Location),
		Hub:       hub,
	}
}
