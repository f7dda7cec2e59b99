package usecase

import (
	"strings"

	"alpha_sentiment/internal/feature/stocks/domain/entity"
)

const (
	// DefaultNewsLimit は1銘柄あたりに残すニュースの上限です。
	DefaultNewsLimit = 10
	// NewsSource は全市場ニュースフィードの配信元名です。
	NewsSource = "财联社"
)

// FilterNewsForStock はタグまたは要約に銘柄名を含むニュースを先頭からlimit件まで返します。
func FilterNewsForStock(stockName string, raw []entity.RawNews, limit int) []entity.NewsData {
	if limit <= 0 {
		limit = DefaultNewsLimit
	}
	out := make([]entity.NewsData, 0)
	if stockName == "" {
		return out
	}
	for _, item := range raw {
		if !strings.Contains(item.Tag, stockName) && !strings.Contains(item.Summary, stockName) {
			continue
		}
		out = append(out, entity.NewsData{
			Title:       item.Tag,
			Content:     item.Summary,
			Source:      NewsSource,
			PublishTime: item.PubTime,
			URL:         item.URL,
		})
		if len(out) >= limit {
			break
		}
	}
	return out
}
