package entity

import "time"

// EnrichedStock はホット銘柄一覧に載る1銘柄です。
// 取得や分析に失敗した銘柄はSentimentScoreがnilになります。
type EnrichedStock struct {
	Code             string   `json:"code"`
	Name             string   `json:"name"`
	Price            float64  `json:"price"`
	Change           float64  `json:"change"`
	Heat             int      `json:"heat"`
	Tags             []string `json:"tags"`
	SentimentScore   *int     `json:"sentiment_score"`
	RatingScore      *float64 `json:"rating_score,omitempty"`
	InstitutionRatio *float64 `json:"institution_ratio,omitempty"`
	AttentionIndex   *float64 `json:"attention_index,omitempty"`
}

// HotStocksSnapshot は hot_stocks.json の内容です。
type HotStocksSnapshot struct {
	UpdatedAt    string          `json:"updated_at"`
	TotalStocks  int             `json:"total_stocks"`
	SuccessCount int             `json:"success_count"`
	FailedCount  int             `json:"failed_count"`
	Stocks       []EnrichedStock `json:"stocks"`
}

// UpdatedTime はUpdatedAtを解釈します。タイムゾーン無しの形式も受け付けます。
func (s HotStocksSnapshot) UpdatedTime(loc *time.Location) (time.Time, bool) {
	return ParseTimestamp(s.UpdatedAt, loc)
}

// Keyword は詳細画面のキーワードです。
type Keyword struct {
	Word      string `json:"word"`
	Sentiment string `json:"sentiment"`
}

// StockDetail は stock_<code>.json の detail 部分です。
type StockDetail struct {
	Code           string       `json:"code"`
	Name           string       `json:"name"`
	Price          float64      `json:"price"`
	Change         float64      `json:"change"`
	SentimentScore *int         `json:"sentiment_score"`
	Analysis       *string      `json:"analysis"`
	Keywords       []Keyword    `json:"keywords"`
	News           []NewsData   `json:"news"`
	Kline          []KlineData  `json:"kline"`
	Tags           []string     `json:"tags"`
	Rating         *StockRating `json:"rating"`
}

// StockSnapshot は stock_<code>.json の内容です。
type StockSnapshot struct {
	UpdatedAt string      `json:"updated_at"`
	Detail    StockDetail `json:"detail"`
}

// ScorePoint は銘柄ごとの日次スコア履歴の1点です。
type ScorePoint struct {
	Date      string `json:"date"`
	Score     int    `json:"score"`
	Sentiment string `json:"sentiment,omitempty"`
}

// RunReport は1回のデータ生成の結果です。
type RunReport struct {
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Total     int           `json:"total"`
	Success   int           `json:"success"`
	Failed    int           `json:"failed"`
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp はISO 8601系のタイムスタンプを解釈します。
// オフセットが無い場合はlocの時刻として扱います。
func ParseTimestamp(s string, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// StockScore は履歴DBへ記録する1銘柄の日次スコアです。
type StockScore struct {
	Code      string
	Name      string
	Score     int
	Sentiment string
}

// EventSnapshotUpdated はスナップショット更新イベントの種別です。
const EventSnapshotUpdated = "snapshot_updated"

// SnapshotEvent はWebSocketで配信する更新通知です。
type SnapshotEvent struct {
	Type      string `json:"type"`
	UpdatedAt string `json:"updated_at"`
	Total     int    `json:"total"`
	Success   int    `json:"success"`
	Failed    int    `json:"failed"`
}
