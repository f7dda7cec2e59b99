// generate は人気銘柄スナップショットを1回だけ生成、または削除するCLIです。
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"alpha_sentiment/internal/app/di"
	"alpha_sentiment/internal/platform/logger"
)

func main() {
	run := flag.Bool("run", false, "generate snapshots once (default)")
	del := flag.Bool("delete", false, "delete all generated snapshots")
	flag.Parse()

	if err := godotenv.Load(".env"); err != nil {
		slog.Info(".env not found; using system environment variables")
	}
	logger.Setup(logger.LevelFromEnv())

	if *run && *del {
		fmt.Fprintln(os.Stderr, "--run and --delete are mutually exclusive")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	inf := di.NewInfra(ctx)
	defer inf.Close()
	stocks := di.NewStocks(inf, nil)

	if *del {
		n, err := stocks.Generator.DeleteAll(ctx)
		if err != nil {
			slog.Error("delete failed", "error", err)
			os.Exit(1)
		}
		fmt.Printf("deleted %d files from %s\n", n, stocks.Store.Dir())
		return
	}

	report, err := stocks.Generator.Generate(ctx)
	if err != nil {
		slog.Error("generation failed", "error", err)
		os.Exit(1)
	}
	fmt.Printf("generated %d/%d stocks (failed %d) in %s\n",
		report.Success, report.Total, report.Failed, report.Duration)

	codes, err := stocks.Store.ListCodes()
	if err != nil {
		slog.Warn("failed to list stock snapshots", "error", err)
		return
	}
	updated, _ := stocks.Store.LastUpdated()
	fmt.Printf("%d detail files in %s (updated_at %s)\n", len(codes), stocks.Store.Dir(), updated)
}
