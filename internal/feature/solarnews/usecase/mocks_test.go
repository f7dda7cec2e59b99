package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"alpha_sentiment/internal/feature/solarnews/domain/entity"
)

type mockSource struct {
	items map[entity.NewsType][]entity.NewsItem
	last  *time.Time
	err   error
	calls int
}

func (m *mockSource) Items(_ context.Context, t entity.NewsType) ([]entity.NewsItem, *time.Time, error) {
	m.calls++
	if m.err != nil {
		return nil, nil, m.err
	}
	return m.items[t], m.last, nil
}

type memorySummaries struct {
	mu      sync.Mutex
	byType  map[entity.NewsType][]entity.Summary
	saveErr error
}

func newMemorySummaries() *memorySummaries {
	return &memorySummaries{byType: make(map[entity.NewsType][]entity.Summary)}
}

func (m *memorySummaries) Summaries(t entity.NewsType) ([]entity.Summary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byType[t], nil
}

func (m *memorySummaries) SaveSummary(t entity.NewsType, s entity.Summary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.byType[t] = MergeSummary(m.byType[t], s, SummaryKeep)
	return nil
}

type mockModel struct {
	CompleteFunc func(ctx context.Context, system, user string) (string, error)
	Calls        int
	LastUser     string
}

func (m *mockModel) Complete(ctx context.Context, system, user string) (string, error) {
	m.Calls++
	m.LastUser = user
	return m.CompleteFunc(ctx, system, user)
}

type mockCrawler struct {
	name  string
	kind  entity.NewsType
	items []entity.NewsItem
	err   error
	block bool
}

func (m *mockCrawler) Name() string          { return m.name }
func (m *mockCrawler) Kind() entity.NewsType { return m.kind }

func (m *mockCrawler) Crawl(ctx context.Context) ([]entity.NewsItem, error) {
	if m.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return m.items, m.err
}

type prefixTranslator struct{ calls int }

func (p *prefixTranslator) Translate(_ context.Context, text string) string {
	p.calls++
	return "译:" + text
}

type memoryWriter struct {
	domestic      []entity.NewsItem
	international *entity.TranslatedFile
	err           error
}

func (m *memoryWriter) WriteDomestic(date time.Time, items []entity.NewsItem) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.domestic = items
	return "combined_" + date.Format("20060102") + ".json", nil
}

func (m *memoryWriter) WriteInternational(date time.Time, f entity.TranslatedFile) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.international = &f
	return "translator_" + date.Format("20060102") + ".json", nil
}

var errBoom = errors.New("boom")
