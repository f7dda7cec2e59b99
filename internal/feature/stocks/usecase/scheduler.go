package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"alpha_sentiment/internal/feature/alert"
	"alpha_sentiment/internal/feature/stocks/domain/entity"
	"alpha_sentiment/internal/platform/scheduler"
	"alpha_sentiment/internal/shared/env"
)

// DefaultSchedule は引け後（15:30）の毎日実行です。
const DefaultSchedule = "30 15 * * *"

const (
	alertHeading      = "AlphaSenti 数据刷新通知"
	alertTitleSuccess = "AlphaSenti 数据刷新成功"
	alertTitleFailure = "AlphaSenti 数据刷新失败"
)

// Generator はスケジューラーから呼ばれる生成処理です。
type Generator interface {
	Generate(ctx context.Context) (entity.RunReport, error)
}

// LoadSchedule は環境変数からcron式を読み込みます。
func LoadSchedule() string {
	return env.String("ALPHA_SENTIMENT_SCHEDULE", DefaultSchedule)
}

// RefreshScheduler は日次のデータ刷新と起動時の初回刷新を管理します。
type RefreshScheduler struct {
	gen       Generator
	snapshots SnapshotReader
	sessions  TradingSessions
	notifier  Notifier
	cron      *scheduler.Scheduler
	spec      string
	now       func() time.Time
	wg        sync.WaitGroup
}

// NewRefreshScheduler は RefreshScheduler を生成します。notifierはnilでも構いません。
func NewRefreshScheduler(gen Generator, snapshots SnapshotReader, sessions TradingSessions, notifier Notifier, spec string) *RefreshScheduler {
	if spec == "" {
		spec = DefaultSchedule
	}
	return &RefreshScheduler{
		gen:       gen,
		snapshots: snapshots,
		sessions:  sessions,
		notifier:  notifier,
		cron:      scheduler.New(sessions.Location()),
		spec:      spec,
		now:       time.Now,
	}
}

// NeedsInitialRefresh は起動時にデータを作り直すべきかを判定します。
// スナップショットが無い、読めない、日付が無い、または直近の引け済み取引日より古い場合にtrueです。
func (s *RefreshScheduler) NeedsInitialRefresh(ctx context.Context) bool {
	snap, err := s.snapshots.ReadHotStocks(ctx)
	if err != nil {
		slog.Info("initial refresh needed", "reason", "snapshot unavailable", "error", err)
		return true
	}

	loc := s.sessions.Location()
	updated, ok := snap.UpdatedTime(loc)
	if !ok {
		slog.Info("initial refresh needed", "reason", "updated_at has no date", "updated_at", snap.UpdatedAt)
		return true
	}

	updatedDay := updated.In(loc).Format(time.DateOnly)
	latest := s.sessions.LatestClosedSession(s.now()).Format(time.DateOnly)
	if updatedDay < latest {
		slog.Info("initial refresh needed", "reason", "snapshot is stale", "updated", updatedDay, "latest_session", latest)
		return true
	}
	return false
}

// RunOnce は生成を1回実行し、結果を通知します。
func (s *RefreshScheduler) RunOnce(ctx context.Context) {
	started := s.now()
	report, err := s.gen.Generate(ctx)
	elapsed := s.now().Sub(started)

	if errors.Is(err, ErrGenerationInProgress) {
		slog.Info("refresh skipped, generation already running")
		return
	}

	var a alert.Alert
	if err != nil {
		slog.Error("scheduled refresh failed", "error", err)
		a = alert.Alert{
			Title:   alertTitleFailure,
			Heading: alertHeading,
			Status:  alert.StatusFailure,
			Message: fmt.Sprintf("每日数据刷新失败: %v", err),
			Details: []alert.Detail{{Key: "耗时", Value: formatSeconds(elapsed)}},
		}
	} else {
		a = alert.Alert{
			Title:   alertTitleSuccess,
			Heading: alertHeading,
			Status:  alert.StatusSuccess,
			Message: "每日数据刷新完成",
			Details: []alert.Detail{
				{Key: "总股票数", Value: fmt.Sprint(report.Total)},
				{Key: "成功数", Value: fmt.Sprint(report.Success)},
				{Key: "失败数", Value: fmt.Sprint(report.Failed)},
				{Key: "耗时", Value: formatSeconds(elapsed)},
			},
		}
	}
	a.Time = s.now().In(s.sessions.Location())

	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, a); err != nil {
		slog.Warn("failed to send refresh alert", "error", err)
	}
}

// Start は必要なら初回刷新をバックグラウンドで開始し、cronを起動します。
func (s *RefreshScheduler) Start(ctx context.Context) error {
	if err := s.cron.Add(s.spec, "alpha_sentiment_refresh", s.RunOnce); err != nil {
		return err
	}

	if s.NeedsInitialRefresh(ctx) {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.RunOnce(ctx)
		}()
	}

	s.cron.Start()
	slog.Info("refresh scheduler started", "schedule", s.spec, "next", s.cron.Next())
	return nil
}

// Stop は新規実行を止め、実行中のジョブの終了を待ちます。
func (s *RefreshScheduler) Stop(ctx context.Context) {
	s.cron.Stop(ctx)

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		slog.Warn("initial refresh did not finish before shutdown", "error", ctx.Err())
	}
}

func formatSeconds(d time.Duration) string {
	return fmt.Sprintf("%.1f秒", d.Seconds())
}
