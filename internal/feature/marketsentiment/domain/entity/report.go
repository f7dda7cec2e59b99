package entity

// 市場状態
const (
	StateOptimistic          = "乐观"
	StateSlightlyOptimistic  = "略微乐观"
	StateNeutral             = "中性"
	StateSlightlyPessimistic = "略微悲观"
	StatePessimistic         = "悲观"
)

// 傾向
const (
	TrendUp   = "上升"
	TrendDown = "下降"
)

// SourceStatistics は投稿元ごとの集計です。
type SourceStatistics struct {
	Index         float64 `json:"normalized_index"`
	PostCount     int     `json:"post_count"`
	PositiveRatio float64 `json:"positive_ratio"`
}

// KeywordCount はキーワードと出現数です。
type KeywordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// Intensity は感情の強さとばらつきです。
type Intensity struct {
	AverageIntensity float64 `json:"average_intensity"`
	Volatility       float64 `json:"volatility"`
}

// Recommendation は市場状態から導く投資アドバイスです。
type Recommendation struct {
	Outlook   string `json:"outlook"`
	Action    string `json:"action"`
	RiskLevel string `json:"risk_level"`
}

// Report は1日分の市場感情レポートです。Indexは0〜100です。
type Report struct {
	Date                  string                      `json:"date"`
	TotalPosts            int                         `json:"total_posts"`
	SentimentDistribution map[string]int              `json:"sentiment_distribution"`
	Index                 float64                     `json:"normalized_sentiment_index"`
	SourceStatistics      map[string]SourceStatistics `json:"source_statistics"`
	TopKeywords           []KeywordCount              `json:"top_keywords"`
	Intensity             Intensity                   `json:"sentiment_intensity"`
	MarketState           string                      `json:"market_state"`
	Confidence            float64                     `json:"confidence_score"`
	Recommendation        Recommendation              `json:"recommendation"`
}

// HistoricalAnalysis は複数日のレポートから求めた推移です。
type HistoricalAnalysis struct {
	Period  string    `json:"period"`
	Dates   []string  `json:"dates"`
	Values  []float64 `json:"sentiment_values"`
	Average float64   `json:"average_sentiment"`
	Trend   string    `json:"trend"`
}
