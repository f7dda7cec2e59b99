package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"alpha_sentiment/internal/feature/marketsentiment/domain/entity"
)

// DefaultHistoryDays は履歴分析の既定日数です。
const DefaultHistoryDays = 7

// DailyUsecase は日次レポートの生成と履歴分析を行います。
type DailyUsecase struct {
	calc      *Calculator
	raw       RawPostSource
	processed ProcessedWriter
	reports   ReportRepository
	now       func() time.Time
}

// NewDailyUsecase は DailyUsecase を生成します。
func NewDailyUsecase(calc *Calculator, raw RawPostSource, processed ProcessedWriter, reports ReportRepository) *DailyUsecase {
	return &DailyUsecase{calc: calc, raw: raw, processed: processed, reports: reports, now: time.Now}
}

// RunDaily は date の生投稿を処理してレポートを保存します。
func (u *DailyUsecase) RunDaily(ctx context.Context, date time.Time) (entity.Report, error) {
	day := date.Format(time.DateOnly)

	raw, err := u.raw.LoadRawPosts(ctx, date)
	if err != nil {
		return entity.Report{}, fmt.Errorf("load raw posts %s: %w", day, err)
	}
	if len(raw) == 0 {
		return entity.Report{}, ErrNoPosts
	}

	posts := u.calc.Process(raw)
	report, err := u.calc.Calculate(posts, day)
	if err != nil {
		return entity.Report{}, err
	}

	if err := u.processed.SaveProcessed(date, posts); err != nil {
		return entity.Report{}, fmt.Errorf("save processed posts %s: %w", day, err)
	}
	if err := u.reports.Save(ctx, report); err != nil {
		return entity.Report{}, fmt.Errorf("save report %s: %w", day, err)
	}

	slog.Info("market sentiment report generated",
		"date", day, "posts", report.TotalPosts, "index", report.Index, "state", report.MarketState)
	return report, nil
}

// RunBatch は直近 days 日分のレポートを作ります。投稿が無い日は飛ばします。
func (u *DailyUsecase) RunBatch(ctx context.Context, days int) ([]entity.Report, error) {
	if days <= 0 {
		days = DefaultHistoryDays
	}
	today := u.now()
	out := make([]entity.Report, 0, days)
	for i := days - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		r, err := u.RunDaily(ctx, today.AddDate(0, 0, -i))
		if errors.Is(err, ErrNoPosts) {
			continue
		}
		if err != nil {
			slog.Warn("daily report failed", "offset", i, "error", err)
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// Report は保存済みの指定日レポートを返します。
func (u *DailyUsecase) Report(ctx context.Context, date string) (entity.Report, error) {
	if _, err := time.Parse(time.DateOnly, date); err != nil {
		return entity.Report{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return u.reports.Get(ctx, date)
}

// Historical は直近 days 日（当日含む）のレポートから推移を求めます。
// レポートの無い日は飛ばします。
func (u *DailyUsecase) Historical(ctx context.Context, days int) (entity.HistoricalAnalysis, error) {
	if days <= 0 {
		days = DefaultHistoryDays
	}
	today := u.now()
	from := today.AddDate(0, 0, -days).Format(time.DateOnly)
	to := today.Format(time.DateOnly)

	reports, err := u.reports.Range(ctx, from, to)
	if err != nil {
		return entity.HistoricalAnalysis{}, fmt.Errorf("load reports %s..%s: %w", from, to, err)
	}
	if len(reports) == 0 {
		return entity.HistoricalAnalysis{}, ErrNoReports
	}

	h := entity.HistoricalAnalysis{
		Dates:  make([]string, 0, len(reports)),
		Values: make([]float64, 0, len(reports)),
	}
	sum := 0.0
	for _, r := range reports {
		h.Dates = append(h.Dates, r.Date)
		h.Values = append(h.Values, r.Index)
		sum += r.Index
	}
	h.Period = fmt.Sprintf("%s 至 %s", h.Dates[0], h.Dates[len(h.Dates)-1])
	h.Average = sum / float64(len(reports))
	h.Trend = entity.TrendDown
	if h.Values[len(h.Values)-1] > h.Values[0] {
		h.Trend = entity.TrendUp
	}
	return h, nil
}
