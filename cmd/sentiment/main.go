// sentiment は投稿ファイルから日次の市場センチメントレポートを作成するCLIです。
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"alpha_sentiment/internal/app/di"
	"alpha_sentiment/internal/feature/marketsentiment/domain/entity"
	"alpha_sentiment/internal/feature/marketsentiment/usecase"
	"alpha_sentiment/internal/platform/logger"
	"alpha_sentiment/internal/shared/env"
)

func main() {
	date := flag.String("date", "", "report date (YYYY-MM-DD), default today")
	batch := flag.Int("batch", 0, "process the last N days instead of a single date")
	history := flag.Int("history", usecase.DefaultHistoryDays, "days of history to summarise (0 to skip)")
	flag.Parse()

	if err := godotenv.Load(".env"); err != nil {
		slog.Info(".env not found; using system environment variables")
	}
	logger.Setup(logger.LevelFromEnv())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loc := env.Location("ALPHA_SENTIMENT_TIMEZONE", "Asia/Shanghai")
	s, err := di.NewSentiment(ctx, loc)
	if err != nil {
		slog.Error("failed to init market sentiment", "error", err)
		os.Exit(1)
	}
	defer s.Close()

	if *batch > 0 {
		reports, err := s.Usecase.RunBatch(ctx, *batch)
		if err != nil {
			slog.Error("batch failed", "error", err)
			os.Exit(1)
		}
		for _, r := range reports {
			printReport(r)
		}
	} else {
		day := time.Now().In(loc)
		if *date != "" {
			day, err = time.ParseInLocation(time.DateOnly, *date, loc)
			if err != nil {
				fmt.Fprintf(os.Stderr, "invalid -date %q: want YYYY-MM-DD\n", *date)
				os.Exit(2)
			}
		}
		r, err := s.Usecase.RunDaily(ctx, day)
		if errors.Is(err, usecase.ErrNoPosts) {
			fmt.Printf("%s: no raw posts under %s\n", day.Format(time.DateOnly), s.Files.Dir())
			os.Exit(1)
		}
		if err != nil {
			slog.Error("daily report failed", "error", err)
			os.Exit(1)
		}
		printReport(r)
	}

	if *history > 0 {
		h, err := s.Usecase.Historical(ctx, *history)
		if errors.Is(err, usecase.ErrNoReports) {
			fmt.Println("暂无历史数据")
			return
		}
		if err != nil {
			slog.Error("history failed", "error", err)
			os.Exit(1)
		}
		fmt.Printf("\n历史趋势 %s: 平均 %.2f, 趋势 %s\n", h.Period, h.Average, h.Trend)
	}
}

func printReport(r entity.Report) {
	fmt.Printf("\n=== %s 市场情绪报告 ===\n", r.Date)
	fmt.Printf("帖子数: %d  情绪指数: %.2f  市场状态: %s  置信度: %.2f\n",
		r.TotalPosts, r.Index, r.MarketState, r.Confidence)
	fmt.Printf("分布: 正面 %d / 负面 %d / 中性 %d\n",
		r.SentimentDistribution["positive"], r.SentimentDistribution["negative"], r.SentimentDistribution["neutral"])

	sources := make([]string, 0, len(r.SourceStatistics))
	for src := range r.SourceStatistics {
		sources = append(sources, src)
	}
	sort.Strings(sources)
	for _, src := range sources {
		st := r.SourceStatistics[src]
		fmt.Printf("  %-10s 指数 %.2f  帖子 %d  正面占比 %.2f\n", src, st.Index, st.PostCount, st.PositiveRatio)
	}

	for i, kw := range r.TopKeywords {
		if i >= 5 {
			break
		}
		fmt.Printf("  关键词 %s ×%d\n", kw.Word, kw.Count)
	}
	fmt.Printf("建议: %s / %s (风险 %s)\n", r.Recommendation.Outlook, r.Recommendation.Action, r.Recommendation.RiskLevel)
}
