package entity

// Summary は1日分のAI简报です。summary_<type>.json に新しい順で保存されます。
type Summary struct {
	Date           string         `json:"date"`
	GeneratedAt    string         `json:"generated_at"`
	Summary        string         `json:"summary"`
	NewsCount      int            `json:"news_count"`
	ProcessedCount int            `json:"processed_count"`
	SourceStats    map[string]int `json:"source_stats"`
	NewsType       NewsType       `json:"news_type"`
	Success        bool           `json:"success"`
}

// SummaryList は简报APIのレスポンスです。
type SummaryList struct {
	Success bool      `json:"success"`
	Data    []Summary `json:"data"`
}

// CrawlResult はクローラー1つ分の実行結果です。
type CrawlResult struct {
	Success bool   `json:"success"`
	Count   int    `json:"count"`
	File    string `json:"file,omitempty"`
	Error   string `json:"error,omitempty"`
}

// CrawlReport は全クローラーの実行結果です。
type CrawlReport struct {
	Results        map[string]CrawlResult `json:"results"`
	TotalSuccess   int                    `json:"total_success"`
	TotalCount     int                    `json:"total_count"`
	FailedCrawlers []string               `json:"failed_crawlers"`
}
