package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"alpha_sentiment/internal/app/di"
	"alpha_sentiment/internal/app/router"
	"alpha_sentiment/internal/feature/stocks/transport/ws"
	"alpha_sentiment/internal/platform/logger"
	"alpha_sentiment/internal/shared/env"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// .envを読み込む
	if err := godotenv.Load(".env"); err != nil {
		slog.Info(".env not found; using system environment variables")
	}
	logger.Setup(logger.LevelFromEnv())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// DB / Redis / LLM
	inf := di.NewInfra(ctx)
	defer inf.Close()

	// 更新イベントのWebSocketハブ
	hub := ws.NewHub()
	go hub.Run(ctx)

	stocks := di.NewStocks(inf, hub)

	sentiment, err := di.NewSentiment(ctx, inf.Location)
	if err != nil {
		slog.Error("failed to init market sentiment", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := sentiment.Close(); err != nil {
			slog.Error("failed to close sentiment reports", "error", err)
		}
	}()

	solar, err := di.NewSolar(inf)
	if err != nil {
		slog.Error("failed to init solar news", "error", err)
		os.Exit(1)
	}

	// スケジューラー
	if err := stocks.Scheduler.Start(ctx); err != nil {
		slog.Error("failed to start refresh scheduler", "error", err)
		os.Exit(1)
	}
	if err := solar.Task.Start(); err != nil {
		slog.Error("failed to start solar scheduler", "error", err)
		os.Exit(1)
	}

	r := router.NewRouter(router.Handlers{
		Stocks:    stocks.Handler,
		Hub:       hub,
		Sentiment: sentiment.Handler,
		Solar:     solar.Handler,
		Checkers:  inf.Checkers(),
		DataDir:   stocks.Store.Dir(),
	})

	// JWT_SECRETチェック（開発中の注意喚起）
	if os.Getenv("ADMIN_JWT_SECRET") == "" {
		slog.Warn("ADMIN_JWT_SECRET is not set; admin endpoints are unprotected")
	}

	addr := net.JoinHostPort(env.First("127.0.0.1", "ALPHA_SENTIMENT_HOST", "HOST"), env.First("5001", "ALPHA_SENTIMENT_PORT", "PORT"))
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}
	stocks.Scheduler.Stop(shutdownCtx)
	solar.Task.Stop(shutdownCtx)
}
