package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"alpha_sentiment/internal/feature/solarnews/domain/entity"
	"alpha_sentiment/internal/platform/scheduler"
	"alpha_sentiment/internal/shared/env"
)

// DefaultSchedule は毎日02:00の実行です。
const DefaultSchedule = "0 2 * * *"

// LoadSchedule は SOLAR_SCHEDULE を読みます。
func LoadSchedule() string {
	return env.String("SOLAR_SCHEDULE", DefaultSchedule)
}

// Summarizer は简报の生成処理です。
type Summarizer interface {
	GenerateSummary(ctx context.Context, t entity.NewsType) (entity.Summary, error)
}

// DailyTask は収集、翻訳、简报生成を順に実行します。
type DailyTask struct {
	crawl     *CrawlUsecase
	summaries Summarizer
	cron      *scheduler.Scheduler
	spec      string
}

// NewDailyTask は DailyTask を生成します。
func NewDailyTask(crawl *CrawlUsecase, summaries Summarizer, loc *time.Location, spec string) *DailyTask {
	if spec == "" {
		spec = DefaultSchedule
	}
	return &DailyTask{crawl: crawl, summaries: summaries, cron: scheduler.New(loc), spec: spec}
}

// Run は1回分の日次処理です。简报の失敗はログに残して続行します。
func (d *DailyTask) Run(ctx context.Context) (entity.CrawlReport, error) {
	started := time.Now()
	report, err := d.crawl.CrawlAll(ctx)
	if err != nil {
		slog.Error("solar crawl failed", "error", err)
		return report, err
	}
	slog.Info("solar crawl completed",
		"success", report.TotalSuccess, "count", report.TotalCount, "failed", report.FailedCrawlers)

	for _, t := range []entity.NewsType{entity.Domestic, entity.International} {
		if _, err := d.summaries.GenerateSummary(ctx, t); err != nil {
			level := slog.LevelError
			if errors.Is(err, ErrNoNews) || errors.Is(err, ErrSummarizerUnavailable) {
				level = slog.LevelWarn
			}
			slog.Log(ctx, level, "solar summary skipped", "type", t, "error", err)
		}
	}
	slog.Info("solar daily task finished", "elapsed", time.Since(started))
	return report, nil
}

// Start は日次ジョブを登録して開始します。
func (d *DailyTask) Start() error {
	if err := d.cron.Add(d.spec, "solar_daily", func(ctx context.Context) {
		_, _ = d.Run(ctx)
	}); err != nil {
		return err
	}
	d.cron.Start()
	slog.Info("solar scheduler started", "schedule", d.spec, "next", d.cron.Next())
	return nil
}

// Stop は実行中のジョブの終了を待ちます。
func (d *DailyTask) Stop(ctx context.Context) {
	d.cron.Stop(ctx)
}
