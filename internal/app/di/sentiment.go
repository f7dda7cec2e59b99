package di

import (
	"context"
	"fmt"
	"time"

	"alpha_sentiment/internal/feature/marketsentiment/adapters/filestore"
	"alpha_sentiment/internal/feature/marketsentiment/adapters/reportstore"
	"alpha_sentiment/internal/feature/marketsentiment/lexicon"
	"alpha_sentiment/internal/feature/marketsentiment/transport/handler"
	"alpha_sentiment/internal/feature/marketsentiment/usecase"
	"alpha_sentiment/internal/shared/env"
)

// EnvLexiconFile は感情辞書YAMLのパスを指定する環境変数です。
const EnvLexiconFile = "SENTIMENT_LEXICON_FILE"

// Sentiment は市場センチメントフィーチャーの組み立て結果です。
type Sentiment struct {
	Usecase *usecase.DailyUsecase
	Handler *handler.SentimentHandler
	Files   *filestore.Store
	reports *reportstore.SQLiteStore
}

// NewSentiment は辞書、投稿ファイル、レポートDBを配線します。
func NewSentiment(ctx context.Context, loc *time.Location) (*Sentiment, error) {
	lex, err := lexicon.Load(env.String(EnvLexiconFile, ""))
	if err != nil {
		return nil, fmt.Errorf("load lexicon: %w", err)
	}

	analyzer, err := lexicon.NewAnalyzer(lex)
	if err != nil {
		return nil, fmt.Errorf("init sentiment analyzer: %w", err)
	}

	reports, err := reportstore.Open(ctx, reportstore.LoadDBPath())
	if err != nil {
		return nil, fmt.Errorf("open sentiment reports: %w", err)
	}

	files := filestore.NewStore(filestore.LoadDataDir())
	uc := usecase.NewDailyUsecase(usecase.NewCalculator(analyzer), files, files, reports)
	return &Sentiment{
		Usecase: uc,
		Handler: handler.NewSentimentHandler(uc, loc),
		Files:   files,
		reports: reports,
	}, nil
}

// Close はレポートDBを閉じます。
func (s *Sentiment) Close() error {
	return s.reports.Close()
}
