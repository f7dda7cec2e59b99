// Package handler はstocksフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"alpha_sentiment/internal/api"
	"alpha_sentiment/internal/feature/stocks/domain/entity"
	"alpha_sentiment/internal/feature/stocks/transport/http/dto"
	"alpha_sentiment/internal/feature/stocks/usecase"

	"github.com/gin-gonic/gin"
)

const (
	// ServiceName はヘルスチェックで返すサービス名です。
	ServiceName = "alpha_sentiment"
	// Version はAPIのバージョンです。
	Version = "2.1.0"
)

// StockQuery はスナップショット参照のユースケースです。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type StockQuery interface {
	HotStocks(ctx context.Context) (entity.HotStocksSnapshot, error)
	Stock(ctx context.Context, code string) (entity.StockSnapshot, error)
	LastUpdate(ctx context.Context) (string, bool)
	StockCodes(ctx context.Context) ([]string, error)
	ScoreHistory(ctx context.Context, code string, days int) ([]entity.ScorePoint, error)
	LatestRuns(ctx context.Context, n int) ([]entity.RunReport, error)
}

// Refresher はバックグラウンドでデータ生成を開始します。
type Refresher interface {
	GenerateAsync(ctx context.Context, done func(entity.RunReport, error)) error
}

// StockHandler は人気銘柄APIのHTTPリクエストを処理します。
type StockHandler struct {
	query     StockQuery
	refresher Refresher
	loc       *time.Location
}

// NewStockHandler は StockHandler を生成します。
func NewStockHandler(query StockQuery, refresher Refresher, loc *time.Location) *StockHandler {
	if loc == nil {
		loc = time.Local
	}
	return &StockHandler{query: query, refresher: refresher, loc: loc}
}

// Health はサービスとデータの状態を返します。
//
// エンドポイント例:
// GET /api/health
func (h *StockHandler) Health(c *gin.Context) {
	res := dto.HealthResponse{
		Status:     "ok",
		Service:    ServiceName,
		Version:    Version,
		DataStatus: "no_data",
		Timestamp:  time.Now().In(h.loc).Format(time.RFC3339),
	}
	if last, ok := h.query.LastUpdate(c.Request.Context()); ok {
		res.DataStatus = "ok"
		res.LastUpdate = &last
	}
	if codes, err := h.query.StockCodes(c.Request.Context()); err != nil {
		slog.Warn("failed to list stock snapshots", "error", err)
	} else {
		res.StockCount = len(codes)
	}
	c.JSON(http.StatusOK, res)
}

// HotStocks は人気銘柄一覧を返します。
//
// エンドポイント例:
// GET /api/hot_stocks
func (h *StockHandler) HotStocks(c *gin.Context) {
	snap, err := h.query.HotStocks(c.Request.Context())
	if err != nil {
		h.writeError(c, err, "数据尚未生成，请稍后重试")
		return
	}
	c.JSON(http.StatusOK, snap)
}

// Stock は銘柄詳細を返します。
//
// エンドポイント例:
// GET /api/stock/600519
func (h *StockHandler) Stock(c *gin.Context) {
	code := c.Param("code")
	snap, err := h.query.Stock(c.Request.Context(), code)
	if err != nil {
		h.writeError(c, err, fmt.Sprintf("未找到股票 %s 的数据", code))
		return
	}
	c.JSON(http.StatusOK, snap)
}

// History は銘柄の日次スコア履歴を返します。
//
// エンドポイント例:
// GET /api/stock/600519/history?days=30
func (h *StockHandler) History(c *gin.Context) {
	code := c.Param("code")
	days, _ := strconv.Atoi(c.DefaultQuery("days", strconv.Itoa(usecase.DefaultHistoryDays)))
	days = usecase.ClampDays(days)

	points, err := h.query.ScoreHistory(c.Request.Context(), code, days)
	if err != nil {
		if errors.Is(err, usecase.ErrHistoryUnavailable) {
			c.JSON(http.StatusServiceUnavailable, api.ErrorResponse{Error: err.Error()})
			return
		}
		slog.Error("failed to load score history", "code", code, "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.HistoryResponse{Code: entity.CleanCode(code), Days: days, Points: points})
}

// Runs は直近の生成記録を新しい順に返します。
//
// エンドポイント例:
// GET /api/admin/runs?limit=20
func (h *StockHandler) Runs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(usecase.DefaultRunsLimit)))

	runs, err := h.query.LatestRuns(c.Request.Context(), limit)
	if err != nil {
		if errors.Is(err, usecase.ErrHistoryUnavailable) {
			c.JSON(http.StatusServiceUnavailable, api.ErrorResponse{Error: err.Error()})
			return
		}
		slog.Error("failed to load generation runs", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: err.Error()})
		return
	}

	res := dto.RunsResponse{Runs: make([]dto.RunResponse, 0, len(runs))}
	for _, r := range runs {
		res.Runs = append(res.Runs, dto.RunResponse{
			StartedAt:  r.StartedAt.In(h.loc).Format(time.RFC3339),
			DurationMs: r.Duration.Milliseconds(),
			Total:      r.Total,
			Success:    r.Success,
			Failed:     r.Failed,
		})
	}
	c.JSON(http.StatusOK, res)
}

// Refresh はデータ生成をバックグラウンドで開始します。実行中の場合は409です。
//
// エンドポイント例:
// POST /api/refresh
func (h *StockHandler) Refresh(c *gin.Context) {
	// リクエスト終了後も生成を続けるためキャンセルを切り離す
	ctx := context.WithoutCancel(c.Request.Context())
	err := h.refresher.GenerateAsync(ctx, func(r entity.RunReport, err error) {
		if err != nil {
			slog.Error("manual refresh failed", "error", err)
			return
		}
		slog.Info("manual refresh completed", "total", r.Total, "success", r.Success, "failed", r.Failed)
	})
	if errors.Is(err, usecase.ErrGenerationInProgress) {
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: "数据刷新任务正在执行中"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, dto.RefreshResponse{Status: "accepted", Message: "数据刷新任务已提交"})
}

func (h *StockHandler) writeError(c *gin.Context, err error, notFound string) {
	if errors.Is(err, usecase.ErrSnapshotNotFound) {
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: notFound})
		return
	}
	slog.Error("failed to read snapshot", "path", c.FullPath(), "error", err)
	c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: err.Error()})
}
