// Package usecase は光伏ニュースの検索・简报生成・収集を行います。
package usecase

import (
	"context"
	"time"

	"alpha_sentiment/internal/feature/solarnews/domain/entity"
)

// NewsSource は最新のニュースファイルを読み込みます。
// lastUpdate は最後に読み込みが成功した時刻で、未読み込みならnilです。
type NewsSource interface {
	Items(ctx context.Context, t entity.NewsType) (items []entity.NewsItem, lastUpdate *time.Time, err error)
}

// NewsWriter はクロール結果をファイルに書き出します。戻り値は書き込んだファイルのパスです。
type NewsWriter interface {
	WriteDomestic(date time.Time, items []entity.NewsItem) (string, error)
	WriteInternational(date time.Time, file entity.TranslatedFile) (string, error)
}

// SummaryRepository は简报の履歴を保存します。
type SummaryRepository interface {
	Summaries(t entity.NewsType) ([]entity.Summary, error)
	SaveSummary(t entity.NewsType, s entity.Summary) error
}

// ChatModel はLLMの1往復の呼び出しです。
type ChatModel interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Crawler はニュースの収集元です。
type Crawler interface {
	Name() string
	Kind() entity.NewsType
	Crawl(ctx context.Context) ([]entity.NewsItem, error)
}

// TitleTranslator はタイトルを簡体字中国語に翻訳します。失敗時は原文を返します。
type TitleTranslator interface {
	Translate(ctx context.Context, text string) string
}
