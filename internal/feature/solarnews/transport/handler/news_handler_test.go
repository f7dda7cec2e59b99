package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alpha_sentiment/internal/feature/solarnews/domain/entity"
	"alpha_sentiment/internal/feature/solarnews/transport/handler"
	"alpha_sentiment/internal/feature/solarnews/usecase"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type mockNewsQuery struct {
	QueryFunc func(ctx context.Context, t entity.NewsType, f entity.NewsFilter) (entity.QueryResult, error)
	StatsFunc func(ctx context.Context, t entity.NewsType) (entity.StatsResult, error)
	gotType   entity.NewsType
	gotFilter entity.NewsFilter
}

func (m *mockNewsQuery) Query(ctx context.Context, t entity.NewsType, f entity.NewsFilter) (entity.QueryResult, error) {
	m.gotType, m.gotFilter = t, f
	return m.QueryFunc(ctx, t, f)
}

func (m *mockNewsQuery) Stats(ctx context.Context, t entity.NewsType) (entity.StatsResult, error) {
	m.gotType = t
	return m.StatsFunc(ctx, t)
}

type mockSummaries struct {
	GetFunc      func(ctx context.Context, t entity.NewsType) (entity.SummaryList, error)
	GenerateFunc func(ctx context.Context, t entity.NewsType) (entity.Summary, error)
	GenerateCall int
}

func (m *mockSummaries) GetSummary(ctx context.Context, t entity.NewsType) (entity.SummaryList, error) {
	return m.GetFunc(ctx, t)
}

func (m *mockSummaries) GenerateSummary(ctx context.Context, t entity.NewsType) (entity.Summary, error) {
	m.GenerateCall++
	return m.GenerateFunc(ctx, t)
}

func newRouter(q handler.NewsQuery, s handler.SummaryService) *gin.Engine {
	h := handler.NewNewsHandler(q, s)
	r := gin.New()
	r.GET("/api/news", h.Domestic)
	r.GET("/api/news/stats", h.DomesticStats)
	r.GET("/api/international", h.International)
	r.GET("/api/international/stats", h.InternationalStats)
	r.GET("/api/summary/:type", h.Summary)
	r.POST("/api/summary/:type", h.RegenerateSummary)
	return r
}

func do(r http.Handler, method, url string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, url, nil))
	return w
}

func TestNewsHandler_List(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		url        string
		err        error
		wantCode   int
		wantType   entity.NewsType
		wantFilter entity.NewsFilter
	}{
		{
			name:       "domestic with trimmed params",
			url:        "/api/news?start_date=2025-03-01&end_date=2025-03-10&keyword=%20%E5%85%89%E4%BC%8F%20&source=",
			wantCode:   http.StatusOK,
			wantType:   entity.Domestic,
			wantFilter: entity.NewsFilter{StartDate: "2025-03-01", EndDate: "2025-03-10", Keyword: "光伏"},
		},
		{
			name:       "international",
			url:        "/api/international?source=IEA",
			wantCode:   http.StatusOK,
			wantType:   entity.International,
			wantFilter: entity.NewsFilter{Source: "IEA"},
		},
		{
			name:       "bad date",
			url:        "/api/news?start_date=x&end_date=y",
			err:        usecase.ErrInvalidDate,
			wantCode:   http.StatusBadRequest,
			wantType:   entity.Domestic,
			wantFilter: entity.NewsFilter{StartDate: "x", EndDate: "y"},
		},
		{
			name:     "store failure",
			url:      "/api/international",
			err:      errors.New("disk"),
			wantCode: http.StatusBadGateway,
			wantType: entity.International,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			q := &mockNewsQuery{QueryFunc: func(context.Context, entity.NewsType, entity.NewsFilter) (entity.QueryResult, error) {
				if tt.err != nil {
					return entity.QueryResult{}, tt.err
				}
				return entity.QueryResult{Success: true, Data: []entity.NewsItem{}, SourceStats: map[string]int{}}, nil
			}}

			w := do(newRouter(q, &mockSummaries{}), http.MethodGet, tt.url)
			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, tt.wantType, q.gotType)
			assert.Equal(t, tt.wantFilter, q.gotFilter)

			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.err == nil, body["success"])
		})
	}
}

func TestNewsHandler_Stats(t *testing.T) {
	t.Parallel()
	q := &mockNewsQuery{StatsFunc: func(_ context.Context, t entity.NewsType) (entity.StatsResult, error) {
		return entity.StatsResult{Success: true, TotalCount: 3, SourceStats: map[string]int{"IEA": 3}}, nil
	}}
	r := newRouter(q, &mockSummaries{})

	w := do(r, http.MethodGet, "/api/international/stats")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, entity.International, q.gotType)
	assert.JSONEq(t, `{"success":true,"total_count":3,"source_stats":{"IEA":3},"last_update":null}`, w.Body.String())

	w = do(r, http.MethodGet, "/api/news/stats")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, entity.Domestic, q.gotType)
}

func TestNewsHandler_Summary(t *testing.T) {
	t.Parallel()
	s := &mockSummaries{GetFunc: func(_ context.Context, t entity.NewsType) (entity.SummaryList, error) {
		return entity.SummaryList{Success: true, Data: []entity.Summary{{Date: "2025-03-10", NewsType: t}}}, nil
	}}
	r := newRouter(&mockNewsQuery{}, s)

	w := do(r, http.MethodGet, "/api/summary/domestic")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"news_type":"domestic"`)

	w = do(r, http.MethodGet, "/api/summary/weekly")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"success":false,"error":"Invalid news type. Use 'domestic' or 'international'."}`, w.Body.String())
}

func TestNewsHandler_RegenerateSummary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		url       string
		err       error
		wantCode  int
		wantCalls int
	}{
		{name: "success", url: "/api/summary/international", wantCode: http.StatusOK, wantCalls: 1},
		{name: "invalid type", url: "/api/summary/all", wantCode: http.StatusBadRequest, wantCalls: 0},
		{name: "no news", url: "/api/summary/domestic", err: usecase.ErrNoNews, wantCode: http.StatusNotFound, wantCalls: 1},
		{name: "llm not configured", url: "/api/summary/domestic", err: usecase.ErrSummarizerUnavailable, wantCode: http.StatusServiceUnavailable, wantCalls: 1},
		{name: "llm failure", url: "/api/summary/domestic", err: errors.New("timeout"), wantCode: http.StatusBadGateway, wantCalls: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := &mockSummaries{GenerateFunc: func(_ context.Context, nt entity.NewsType) (entity.Summary, error) {
				if tt.err != nil {
					return entity.Summary{}, tt.err
				}
				return entity.Summary{Date: "2025-03-10", NewsType: nt, Success: true}, nil
			}}

			w := do(newRouter(&mockNewsQuery{}, s), http.MethodPost, tt.url)
			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, tt.wantCalls, s.GenerateCall)
		})
	}
}
