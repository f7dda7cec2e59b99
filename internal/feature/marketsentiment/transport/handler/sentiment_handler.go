// Package handler は市場感情APIのHTTPハンドラーです。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"alpha_sentiment/internal/api"
	"alpha_sentiment/internal/feature/marketsentiment/domain/entity"
	"alpha_sentiment/internal/feature/marketsentiment/usecase"
)

// ReportQuery は保存済みレポートの参照です。
type ReportQuery interface {
	Report(ctx context.Context, date string) (entity.Report, error)
	Historical(ctx context.Context, days int) (entity.HistoricalAnalysis, error)
}

// SentimentHandler は市場感情レポートを返します。
type SentimentHandler struct {
	query ReportQuery
	loc   *time.Location
	now   func() time.Time
}

// NewSentimentHandler は SentimentHandler を生成します。
func NewSentimentHandler(query ReportQuery, loc *time.Location) *SentimentHandler {
	if loc == nil {
		loc = time.Local
	}
	return &SentimentHandler{query: query, loc: loc, now: time.Now}
}

// Report は指定日（既定は当日）のレポートを返します。
//
// エンドポイント例:
// GET /api/market_sentiment?date=2025-03-10
func (h *SentimentHandler) Report(c *gin.Context) {
	date := c.DefaultQuery("date", h.now().In(h.loc).Format(time.DateOnly))
	if _, err := time.Parse(time.DateOnly, date); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "date must be YYYY-MM-DD"})
		return
	}

	r, err := h.query.Report(c.Request.Context(), date)
	if errors.Is(err, usecase.ErrReportNotFound) {
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "未找到 " + date + " 的市场情绪报告"})
		return
	}
	if err != nil {
		slog.Error("failed to load sentiment report", "date", date, "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, r)
}

// History は直近の指数推移を返します。
//
// エンドポイント例:
// GET /api/market_sentiment/history?days=7
func (h *SentimentHandler) History(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", strconv.Itoa(usecase.DefaultHistoryDays)))
	if err != nil || days <= 0 || days > 365 {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "days must be between 1 and 365"})
		return
	}

	hist, err := h.query.Historical(c.Request.Context(), days)
	if errors.Is(err, usecase.ErrNoReports) {
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "暂无历史数据"})
		return
	}
	if err != nil {
		slog.Error("failed to build sentiment history", "days", days, "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, hist)
}
