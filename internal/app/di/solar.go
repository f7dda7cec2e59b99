package di

import (
	"fmt"
	"log/slog"
	"time"

	"alpha_sentiment/internal/feature/solarnews/adapters/filestore"
	"alpha_sentiment/internal/feature/solarnews/adapters/rss"
	"alpha_sentiment/internal/feature/solarnews/adapters/translator"
	"alpha_sentiment/internal/feature/solarnews/transport/handler"
	"alpha_sentiment/internal/feature/solarnews/usecase"
	infrahttp "alpha_sentiment/internal/platform/http"
)

// Solar は光伏ニュースフィーチャーの組み立て結果です。
type Solar struct {
	Store   *filestore.Store
	Task    *usecase.DailyTask
	Handler *handler.NewsHandler
}

// NewSolar はニュースストア、RSSクローラー、翻訳、简报生成を配線します。
func NewSolar(inf *Infra) (*Solar, error) {
	store := filestore.NewStore(filestore.LoadDataDir())

	feeds, err := rss.LoadConfig("")
	if err != nil {
		return nil, fmt.Errorf("load solar feeds: %w", err)
	}
	crawlers := rss.NewCrawlers(feeds, infrahttp.NewBrowserClient(30*time.Second, nil))
	slog.Info("solar crawlers configured", "count", len(crawlers))

	var summaryModel, translateModel usecase.ChatModel
	if inf.LLM.Summary != nil {
		summaryModel = inf.LLM.Summary
	}
	if inf.LLM.Translator != nil {
		translateModel = inf.LLM.Translator
	}

	summaries := usecase.NewSummaryUsecase(store, store, summaryModel)
	crawl := usecase.NewCrawlUsecase(crawlers, translator.New(translateModel, inf.Redis), store, usecase.DefaultCrawlTimeout)

	return &Solar{
		Store:   store,
		Task:    usecase.NewDailyTask(crawl, summaries, inf.Location, usecase.LoadSchedule()),
		Handler: handler.NewNewsHandler(usecase.NewQueryUsecase(store), summaries),
	}, nil
}
