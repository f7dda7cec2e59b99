// Package handler は光伏ニュースAPIのHTTPハンドラーです。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"alpha_sentiment/internal/feature/solarnews/domain/entity"
	"alpha_sentiment/internal/feature/solarnews/transport/http/dto"
	"alpha_sentiment/internal/feature/solarnews/usecase"
)

// InvalidTypeMessage は区分が不正なときのエラーメッセージです。
const InvalidTypeMessage = "Invalid news type. Use 'domestic' or 'international'."

// NewsQuery はニュース一覧と統計の参照です。
type NewsQuery interface {
	Query(ctx context.Context, t entity.NewsType, f entity.NewsFilter) (entity.QueryResult, error)
	Stats(ctx context.Context, t entity.NewsType) (entity.StatsResult, error)
}

// SummaryService は简报の参照と再生成です。
type SummaryService interface {
	GetSummary(ctx context.Context, t entity.NewsType) (entity.SummaryList, error)
	GenerateSummary(ctx context.Context, t entity.NewsType) (entity.Summary, error)
}

// NewsHandler は光伏ニュースのHTTPリクエストを処理します。
type NewsHandler struct {
	query     NewsQuery
	summaries SummaryService
}

// NewNewsHandler は NewsHandler を生成します。
func NewNewsHandler(query NewsQuery, summaries SummaryService) *NewsHandler {
	return &NewsHandler{query: query, summaries: summaries}
}

// Domestic は国内ニュースを返します。
//
// エンドポイント例:
// GET /api/news?start_date=2025-03-01&end_date=2025-03-10&keyword=光伏&source=国家能源局
func (h *NewsHandler) Domestic(c *gin.Context) { h.list(c, entity.Domestic) }

// International は翻訳済みの国際ニュースを返します。
//
// エンドポイント例:
// GET /api/international?keyword=solar
func (h *NewsHandler) International(c *gin.Context) { h.list(c, entity.International) }

// DomesticStats は国内ニュースの来源別件数です。
func (h *NewsHandler) DomesticStats(c *gin.Context) { h.stats(c, entity.Domestic) }

// InternationalStats は国際ニュースの来源別件数です。
func (h *NewsHandler) InternationalStats(c *gin.Context) { h.stats(c, entity.International) }

func (h *NewsHandler) list(c *gin.Context, t entity.NewsType) {
	f := entity.NewsFilter{
		StartDate: strings.TrimSpace(c.Query("start_date")),
		EndDate:   strings.TrimSpace(c.Query("end_date")),
		Keyword:   strings.TrimSpace(c.Query("keyword")),
		Source:    strings.TrimSpace(c.Query("source")),
	}
	res, err := h.query.Query(c.Request.Context(), t, f)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *NewsHandler) stats(c *gin.Context, t entity.NewsType) {
	res, err := h.query.Stats(c.Request.Context(), t)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Summary は保存済みの简报履歴を返します。
//
// エンドポイント例:
// GET /api/summary/domestic
func (h *NewsHandler) Summary(c *gin.Context) {
	t, err := usecase.ParseNewsType(c.Param("type"))
	if err != nil {
		h.fail(c, err)
		return
	}
	list, err := h.summaries.GetSummary(c.Request.Context(), t)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// RegenerateSummary は简报をその場で作り直します（管理者用）。
//
// エンドポイント例:
// POST /api/summary/international
func (h *NewsHandler) RegenerateSummary(c *gin.Context) {
	t, err := usecase.ParseNewsType(c.Param("type"))
	if err != nil {
		h.fail(c, err)
		return
	}
	s, err := h.summaries.GenerateSummary(c.Request.Context(), t)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SummaryResponse{Success: true, Data: s})
}

func (h *NewsHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrInvalidNewsType):
		c.JSON(http.StatusBadRequest, dto.FailureResponse{Error: InvalidTypeMessage})
	case errors.Is(err, usecase.ErrInvalidDate):
		c.JSON(http.StatusBadRequest, dto.FailureResponse{Error: err.Error()})
	case errors.Is(err, usecase.ErrNoNews):
		c.JSON(http.StatusNotFound, dto.FailureResponse{Error: "没有新闻数据"})
	case errors.Is(err, usecase.ErrSummarizerUnavailable):
		c.JSON(http.StatusServiceUnavailable, dto.FailureResponse{Error: "AI 服务未配置"})
	default:
		slog.Error("solar news request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusBadGateway, dto.FailureResponse{Error: err.Error()})
	}
}
