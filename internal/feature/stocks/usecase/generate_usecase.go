package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"alpha_sentiment/internal/feature/stocks/domain/entity"
	"alpha_sentiment/internal/shared/env"

	"golang.org/x/sync/errgroup"
)

const (
	maxDetailNews   = 20
	keywordNeutral  = entity.SentimentNeutral
	defaultDays     = 30
	defaultHotLimit = 20
)

// GenerateConfig はデータ生成の設定です。
type GenerateConfig struct {
	MaxHotStocks int
	Concurrency  int
	KlineDays    int
	Location     *time.Location
}

// LoadGenerateConfig は環境変数から GenerateConfig を読み込みます。
func LoadGenerateConfig() GenerateConfig {
	return GenerateConfig{
		MaxHotStocks: env.Int("ALPHA_SENTIMENT_MAX_HOT_STOCKS", defaultHotLimit),
		Concurrency:  env.Int("ALPHA_SENTIMENT_CONCURRENCY", 5),
		KlineDays:    defaultDays,
		Location: env.Location("ALPHA_SENTIMENT_TIMEZONE", "Asia/Shanghai"),
	}
}

// GenerateUsecase は人気銘柄のスナップショットを生成します。
type GenerateUsecase struct {
	cfg      GenerateConfig
	fetcher  MarketDataFetcher
	analyzer NewsAnalyzer
	store    SnapshotWriter
	history  HistoryRecorder
	cache    SnapshotCache
	events   EventPublisher
	mu       sync.Mutex
	now      func() time.Time
}

// NewGenerateUsecase は GenerateUsecase を生成します。
// history, cache, events は nil でも構いません。
func NewGenerateUsecase(cfg GenerateConfig, fetcher MarketDataFetcher, analyzer NewsAnalyzer, store SnapshotWriter,
	history HistoryRecorder, cache SnapshotCache, events EventPublisher) *GenerateUsecase {
	if cfg.MaxHotStocks <= 0 {
		cfg.MaxHotStocks = defaultHotLimit
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.KlineDays <= 0 {
		cfg.KlineDays = defaultDays
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &GenerateUsecase{
		cfg:      cfg,
		fetcher:  fetcher,
		analyzer: analyzer,
		store:    store,
		history:  history,
		cache:    cache,
		events:   events,
		now:      time.Now,
	}
}

// stockResult は1銘柄分の処理結果です。analysisがnilなら感情スコアはありません。
type stockResult struct {
	stock    entity.HotStock
	data     entity.StockData
	analysis *entity.SentimentAnalysis
}

// Running は生成処理が実行中かどうかを返します。
func (g *GenerateUsecase) Running() bool {
	if g.mu.TryLock() {
		g.mu.Unlock()
		return false
	}
	return true
}

// Generate はデータ取得から分析、スナップショット書き込みまでを1回実行します。
// 既に実行中の場合は ErrGenerationInProgress を返します。
func (g *GenerateUsecase) Generate(ctx context.Context) (entity.RunReport, error) {
	if !g.mu.TryLock() {
		return entity.RunReport{}, ErrGenerationInProgress
	}
	defer g.mu.Unlock()
	return g.generate(ctx)
}

// GenerateAsync は生成処理をバックグラウンドで開始します。
// ロックは呼び出し中に取得するため、実行中であれば即座に ErrGenerationInProgress を返します。
// done は完了時に一度だけ呼ばれます（nil可）。
func (g *GenerateUsecase) GenerateAsync(ctx context.Context, done func(entity.RunReport, error)) error {
	if !g.mu.TryLock() {
		return ErrGenerationInProgress
	}
	go func() {
		defer g.mu.Unlock()
		report, err := g.generate(ctx)
		if done != nil {
			done(report, err)
		}
	}()
	return nil
}

func (g *GenerateUsecase) generate(ctx context.Context) (entity.RunReport, error) {
	started := g.now()
	report := entity.RunReport{StartedAt: started}

	if err := g.store.EnsureDir(); err != nil {
		return report, fmt.Errorf("prepare data dir: %w", err)
	}
	if !g.fetcher.VerifyDataSource(ctx) {
		return report, ErrDataSourceUnavailable
	}

	stocks, err := g.fetcher.GetHotStocks(ctx, g.cfg.MaxHotStocks)
	if err != nil {
		return report, fmt.Errorf("get hot stocks: %w", err)
	}
	if len(stocks) == 0 {
		return report, ErrNoHotStocks
	}
	slog.Info("hot stocks fetched", "count", len(stocks))

	// ニュースと評価は全銘柄分を1回だけ取得する
	rawNews, err := g.fetcher.FetchAllNews(ctx)
	if err != nil {
		slog.Warn("news prefetch failed, continuing without news", "error", err)
	}
	ratings, err := g.fetcher.FetchAllRatings(ctx)
	if err != nil {
		slog.Warn("rating prefetch failed, continuing without ratings", "error", err)
	}

	results := g.processAll(ctx, stocks, rawNews, ratings)
	if err := ctx.Err(); err != nil {
		return report, err
	}

	updatedAt := g.now().In(g.cfg.Location).Format(time.RFC3339)
	enriched, success := buildEnriched(results)

	report.Total = len(enriched)
	report.Success = success
	report.Failed = report.Total - success

	hot := entity.HotStocksSnapshot{
		UpdatedAt:    updatedAt,
		TotalStocks:  report.Total,
		SuccessCount: report.Success,
		FailedCount:  report.Failed,
		Stocks:       enriched,
	}
	if err := g.store.WriteHotStocks(hot); err != nil {
		return report, fmt.Errorf("write hot stocks: %w", err)
	}

	var writeErrs []error
	for _, r := range results {
		snap := entity.StockSnapshot{UpdatedAt: updatedAt, Detail: buildDetail(r)}
		if err := g.store.WriteStock(r.stock.Code, snap); err != nil {
			slog.Error("failed to write stock snapshot", "code", r.stock.Code, "error", err)
			writeErrs = append(writeErrs, err)
		}
	}

	report.Duration = g.now().Sub(started)
	g.afterWrite(ctx, report, hot, results)

	slog.Info("generation completed",
		"total", report.Total, "success", report.Success, "failed", report.Failed, "duration", report.Duration)

	if len(writeErrs) > 0 {
		return report, fmt.Errorf("write stock snapshots: %w", errors.Join(writeErrs...))
	}
	return report, nil
}

// processAll は銘柄ごとの処理をConcurrency並列で実行し、入力順の結果を返します。
func (g *GenerateUsecase) processAll(ctx context.Context, stocks []entity.HotStock, rawNews []entity.RawNews,
	ratings map[string]entity.StockRating) []stockResult {
	results := make([]stockResult, len(stocks))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.cfg.Concurrency)
	for i, s := range stocks {
		eg.Go(func() error {
			results[i] = g.processOne(egCtx, s, rawNews, ratings)
			return nil
		})
	}
	_ = eg.Wait()

	return results
}

// processOne は1銘柄のK線取得とニュース分析を行います。
// 上流呼び出しの再試行はクライアント側で行うため、ここでは失敗を記録して残りの処理を続けます。
func (g *GenerateUsecase) processOne(ctx context.Context, stock entity.HotStock, rawNews []entity.RawNews,
	ratings map[string]entity.StockRating) stockResult {
	kline, err := g.fetcher.GetKline(ctx, stock.Code, g.cfg.KlineDays)
	if err != nil {
		slog.Warn("kline unavailable, continuing without it", "code", stock.Code, "name", stock.Name, "error", err)
		kline = []entity.KlineData{}
	}

	news := FilterNewsForStock(stock.Name, rawNews, DefaultNewsLimit)
	data := entity.StockData{Price: stock, Kline: kline, News: news}
	if r, ok := ratings[stock.Code]; ok {
		data.Rating = &r
	}

	res := stockResult{stock: stock, data: data}
	if len(news) > 0 && g.analyzer != nil {
		a, err := g.analyzer.AnalyzeNews(ctx, stock.Name, news)
		if err != nil {
			slog.Warn("sentiment analysis failed", "code", stock.Code, "error", err)
		} else {
			res.analysis = &a
		}
	}
	return res
}

// buildEnriched は一覧用の銘柄リストと、スコアを持つ銘柄数を返します。
func buildEnriched(results []stockResult) ([]entity.EnrichedStock, int) {
	out := make([]entity.EnrichedStock, 0, len(results))
	success := 0
	for _, r := range results {
		e := entity.EnrichedStock{
			Code:   r.stock.Code,
			Name:   r.stock.Name,
			Price:  r.stock.Price,
			Change: r.stock.Change,
			Heat:   r.stock.Heat,
			Tags:   []string{},
		}
		if r.analysis != nil {
			score := r.analysis.Score
			e.SentimentScore = &score
			e.Tags = nonNil(r.analysis.Tags)
			success++
		}
		if r.data.Rating != nil {
			rt := r.data.Rating
			e.RatingScore = &rt.Score
			e.InstitutionRatio = &rt.InstitutionRatio
			e.AttentionIndex = &rt.AttentionIndex
		}
		out = append(out, e)
	}
	return out, success
}

// buildDetail は stock_<code>.json の detail を組み立てます。
func buildDetail(r stockResult) entity.StockDetail {
	d := entity.StockDetail{
		Code:     r.stock.Code,
		Name:     r.stock.Name,
		Price:    r.stock.Price,
		Change:   r.stock.Change,
		Keywords: []entity.Keyword{},
		News:     []entity.NewsData{},
		Kline:    []entity.KlineData{},
		Tags:     []string{},
	}
	if len(r.data.News) > maxDetailNews {
		d.News = r.data.News[:maxDetailNews]
	} else if r.data.News != nil {
		d.News = r.data.News
	}
	if r.data.Kline != nil {
		d.Kline = r.data.Kline
	}
	d.Rating = r.data.Rating

	if a := r.analysis; a != nil {
		score := a.Score
		summary := a.Summary
		d.SentimentScore = &score
		d.Analysis = &summary
		d.Tags = nonNil(a.Tags)
		for _, w := range a.Keywords {
			d.Keywords = append(d.Keywords, entity.Keyword{Word: w, Sentiment: keywordNeutral})
		}
	}
	return d
}

// afterWrite は履歴の記録、キャッシュ無効化、更新通知を行います。いずれも失敗しても生成は成功扱いです。
func (g *GenerateUsecase) afterWrite(ctx context.Context, report entity.RunReport, hot entity.HotStocksSnapshot, results []stockResult) {
	if g.history != nil {
		date := report.StartedAt.In(g.cfg.Location).Format(time.DateOnly)
		scores := make([]entity.StockScore, 0, len(results))
		for _, r := range results {
			if r.analysis == nil {
				continue
			}
			scores = append(scores, entity.StockScore{
				Code:      r.stock.Code,
				Name:      r.stock.Name,
				Score:     r.analysis.Score,
				Sentiment: r.analysis.Sentiment,
			})
		}
		if err := g.history.RecordRun(ctx, report, date, scores); err != nil {
			slog.Warn("failed to record run history", "error", err)
		}
	}

	if g.cache != nil {
		if err := g.cache.Invalidate(ctx); err != nil {
			slog.Warn("failed to invalidate snapshot cache", "error", err)
		}
	}

	if g.events != nil {
		g.events.Publish(entity.SnapshotEvent{
			Type:      entity.EventSnapshotUpdated,
			UpdatedAt: hot.UpdatedAt,
			Total:     hot.TotalStocks,
			Success:   hot.SuccessCount,
			Failed:    hot.FailedCount,
		})
	}
}

// DeleteAll はデータディレクトリ内のスナップショットをすべて削除し、削除件数を返します。
func (g *GenerateUsecase) DeleteAll(ctx context.Context) (int, error) {
	if !g.mu.TryLock() {
		return 0, ErrGenerationInProgress
	}
	defer g.mu.Unlock()

	n, err := g.store.DeleteAll()
	if err != nil {
		return n, fmt.Errorf("delete snapshots: %w", err)
	}
	if g.cache != nil {
		if err := g.cache.Invalidate(ctx); err != nil {
			slog.Warn("failed to invalidate snapshot cache", "error", err)
		}
	}
	slog.Info("snapshots deleted", "count", n)
	return n, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
