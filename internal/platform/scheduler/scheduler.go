// Package scheduler はrobfig/cronをラップし、重複実行をスキップする定期ジョブを提供します。
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Job はスケジュール実行される処理です。ctxはStopで取り消されます。
type Job func(ctx context.Context)

// Scheduler はタイムゾーン付きのcronスケジューラーです。
// 同じジョブの前回実行が終わっていない場合、次のトリガーはスキップされます。
type Scheduler struct {
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
}

// New は指定タイムゾーンで動作するSchedulerを生成します。
func New(loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	logger := slogLogger{}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Add は5フィールドのcron式specでjobを登録します。
func (s *Scheduler) Add(spec, name string, job Job) error {
	_, err := s.cron.AddFunc(spec, func() {
		started := time.Now()
		slog.Info("scheduled job started", "job", name)
		job(s.ctx)
		slog.Info("scheduled job finished", "job", name, "elapsed", time.Since(started))
	})
	if err != nil {
		return fmt.Errorf("add job %s (%q): %w", name, spec, err)
	}
	return nil
}

// Next は登録済みジョブのうち最も早い次回実行時刻を返します。ジョブが無ければゼロ値です。
func (s *Scheduler) Next() time.Time {
	var next time.Time
	for _, e := range s.cron.Entries() {
		if next.IsZero() || (!e.Next.IsZero() && e.Next.Before(next)) {
			next = e.Next
		}
	}
	return next
}

// Start はスケジューラーをバックグラウンドで開始します。
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop は新規トリガーを止め、実行中のジョブにキャンセルを通知して終了を待ちます。
func (s *Scheduler) Stop(ctx context.Context) {
	s.cancel()
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		slog.Warn("scheduler stop timed out", "error", ctx.Err())
	}
}

// slogLogger はcron.Loggerをslogに接続します。
type slogLogger struct{}

func (slogLogger) Info(msg string, keysAndValues ...interface{}) {
	slog.Debug("cron: "+msg, keysAndValues...)
}

func (slogLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	slog.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
