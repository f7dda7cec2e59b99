package usecase_test

import (
	"context"
	"errors"
	"sort"
	"sync"

	"alpha_sentiment/internal/feature/alert"
	"alpha_sentiment/internal/feature/stocks/domain/entity"
	"alpha_sentiment/internal/feature/stocks/usecase"
)

var errSnapshotMissing = usecase.ErrSnapshotNotFound

// mockFetcher はMarketDataFetcherのモック実装です。並列に呼ばれるためmuで保護します。
type mockFetcher struct {
	mu           sync.Mutex
	VerifyFunc   func(ctx context.Context) bool
	HotFunc      func(ctx context.Context, limit int) ([]entity.HotStock, error)
	KlineFunc    func(ctx context.Context, code string, days int) ([]entity.KlineData, error)
	NewsFunc     func(ctx context.Context) ([]entity.RawNews, error)
	RatingsFunc  func(ctx context.Context) (map[string]entity.StockRating, error)
	KlineCalls   map[string]int
	HotLimitSeen int
}

func (m *mockFetcher) VerifyDataSource(ctx context.Context) bool {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(ctx)
	}
	return true
}

func (m *mockFetcher) GetHotStocks(ctx context.Context, limit int) ([]entity.HotStock, error) {
	m.HotLimitSeen = limit
	if m.HotFunc != nil {
		return m.HotFunc(ctx, limit)
	}
	return nil, errors.New("HotFunc is not implemented")
}

func (m *mockFetcher) GetKline(ctx context.Context, code string, days int) ([]entity.KlineData, error) {
	m.mu.Lock()
	if m.KlineCalls == nil {
		m.KlineCalls = map[string]int{}
	}
	m.KlineCalls[code]++
	m.mu.Unlock()
	if m.KlineFunc != nil {
		return m.KlineFunc(ctx, code, days)
	}
	return []entity.KlineData{}, nil
}

func (m *mockFetcher) FetchAllNews(ctx context.Context) ([]entity.RawNews, error) {
	if m.NewsFunc != nil {
		return m.NewsFunc(ctx)
	}
	return []entity.RawNews{}, nil
}

func (m *mockFetcher) FetchAllRatings(ctx context.Context) (map[string]entity.StockRating, error) {
	if m.RatingsFunc != nil {
		return m.RatingsFunc(ctx)
	}
	return map[string]entity.StockRating{}, nil
}

func (m *mockFetcher) klineCalls(code string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.KlineCalls[code]
}

// mockAnalyzer はNewsAnalyzerのモック実装です。
type mockAnalyzer struct {
	mu          sync.Mutex
	AnalyzeFunc func(ctx context.Context, name string, news []entity.NewsData) (entity.SentimentAnalysis, error)
	Calls       int
}

func (m *mockAnalyzer) AnalyzeNews(ctx context.Context, name string, news []entity.NewsData) (entity.SentimentAnalysis, error) {
	m.mu.Lock()
	m.Calls++
	m.mu.Unlock()
	if m.AnalyzeFunc != nil {
		return m.AnalyzeFunc(ctx, name, news)
	}
	return entity.SentimentAnalysis{}, errors.New("AnalyzeFunc is not implemented")
}

// memoryStore はメモリ上のSnapshotWriter/SnapshotReader実装です。
type memoryStore struct {
	mu          sync.Mutex
	Hot         *entity.HotStocksSnapshot
	Stocks      map[string]entity.StockSnapshot
	Order       []string
	WriteHotErr error
	ReadHotErr  error
	Deleted     int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{Stocks: map[string]entity.StockSnapshot{}}
}

func (s *memoryStore) EnsureDir() error { return nil }

func (s *memoryStore) WriteHotStocks(snap entity.HotStocksSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.WriteHotErr != nil {
		return s.WriteHotErr
	}
	s.Hot = &snap
	s.Order = append(s.Order, "hot_stocks")
	return nil
}

func (s *memoryStore) WriteStock(code string, snap entity.StockSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Stocks[code] = snap
	s.Order = append(s.Order, "stock_"+code)
	return nil
}

func (s *memoryStore) DeleteAll() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.Stocks)
	if s.Hot != nil {
		n++
	}
	s.Hot = nil
	s.Stocks = map[string]entity.StockSnapshot{}
	s.Deleted += n
	return n, nil
}

func (s *memoryStore) ReadHotStocks(ctx context.Context) (entity.HotStocksSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ReadHotErr != nil {
		return entity.HotStocksSnapshot{}, s.ReadHotErr
	}
	if s.Hot == nil {
		return entity.HotStocksSnapshot{}, errSnapshotMissing
	}
	return *s.Hot, nil
}

func (s *memoryStore) ReadStock(ctx context.Context, code string) (entity.StockSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.Stocks[code]
	if !ok {
		return entity.StockSnapshot{}, errSnapshotMissing
	}
	return snap, nil
}

func (s *memoryStore) LastUpdated() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Hot == nil {
		return "", errSnapshotMissing
	}
	return s.Hot.UpdatedAt, nil
}

func (s *memoryStore) ListCodes() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	codes := make([]string, 0, len(s.Stocks))
	for c := range s.Stocks {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes, nil
}

// mockHistory はHistoryRecorder/HistoryReaderのモック実装です。
type mockHistory struct {
	RecordFunc  func(ctx context.Context, report entity.RunReport, date string, scores []entity.StockScore) error
	HistoryFunc func(ctx context.Context, code string, days int) ([]entity.ScorePoint, error)
	RunsFunc    func(ctx context.Context, n int) ([]entity.RunReport, error)
	RecordCalls int
	LastScores  []entity.StockScore
	LastDate    string
}

func (m *mockHistory) RecordRun(ctx context.Context, report entity.RunReport, date string, scores []entity.StockScore) error {
	m.RecordCalls++
	m.LastScores = scores
	m.LastDate = date
	if m.RecordFunc != nil {
		return m.RecordFunc(ctx, report, date, scores)
	}
	return nil
}

func (m *mockHistory) ScoreHistory(ctx context.Context, code string, days int) ([]entity.ScorePoint, error) {
	if m.HistoryFunc != nil {
		return m.HistoryFunc(ctx, code, days)
	}
	return nil, errors.New("HistoryFunc is not implemented")
}

func (m *mockHistory) LatestRuns(ctx context.Context, n int) ([]entity.RunReport, error) {
	if m.RunsFunc != nil {
		return m.RunsFunc(ctx, n)
	}
	return nil, errors.New("RunsFunc is not implemented")
}

// mockCache はSnapshotCacheのモック実装です。
type mockCache struct {
	InvalidateCalls int
	Err             error
}

func (m *mockCache) Invalidate(ctx context.Context) error {
	m.InvalidateCalls++
	return m.Err
}

// mockPublisher はEventPublisherのモック実装です。
type mockPublisher struct {
	Events []entity.SnapshotEvent
}

func (m *mockPublisher) Publish(ev entity.SnapshotEvent) {
	m.Events = append(m.Events, ev)
}

// mockNotifier はNotifierのモック実装です。
type mockNotifier struct {
	mu     sync.Mutex
	Alerts []alert.Alert
	Err    error
}

func (m *mockNotifier) Notify(ctx context.Context, a alert.Alert) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Alerts = append(m.Alerts, a)
	return m.Err
}

func (m *mockNotifier) alerts() []alert.Alert {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]alert.Alert(nil), m.Alerts...)
}
