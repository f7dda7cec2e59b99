// Package entity はstocksフィーチャーのドメインエンティティを定義します。
// いずれも取得時点のスナップショットで、生成後に書き換えません。
package entity

// DefaultSentimentScore は分析できなかった銘柄の中立スコアです。
const DefaultSentimentScore = 50

// HotStock は人気ランキングの1銘柄を表します。
type HotStock struct {
	Code           string   `json:"code"`
	Name           string   `json:"name"`
	Price          float64  `json:"price"`
	Change         float64  `json:"change"`
	Heat           int      `json:"heat"`
	Tags           []string `json:"tags"`
	SentimentScore int      `json:"sentiment_score"`
}

// NewHotStock はタグ空・スコア50で初期化したHotStockを返します。
func NewHotStock(code, name string, price, change float64, heat int) HotStock {
	return HotStock{
		Code:           code,
		Name:           name,
		Price:          price,
		Change:         change,
		Heat:           heat,
		Tags:           []string{},
		SentimentScore: DefaultSentimentScore,
	}
}

// KlineData は日足1本分のOHLCVです。Dateは "2006-01-02" 形式です。
type KlineData struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	Close  float64 `json:"close"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Volume int64   `json:"volume"`
	Amount float64 `json:"amount"`
}

// NewsData は銘柄に関連するニュース1件です。
type NewsData struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	Source      string `json:"source"`
	PublishTime string `json:"publish_time"`
	URL         string `json:"url"`
}

// RawNews は全市場ニュースフィードの1件で、銘柄での絞り込み前のデータです。
type RawNews struct {
	Tag     string `json:"tag"`
	Summary string `json:"summary"`
	PubTime string `json:"pub_time"`
	URL     string `json:"url"`
}

// StockRating は千股千評（総合評価）の指標です。
type StockRating struct {
	Score            float64 `json:"score"`
	InstitutionRatio float64 `json:"institution_ratio"`
	AttentionIndex   float64 `json:"attention_index"`
	Rank             int     `json:"rank"`
	RankChange       int     `json:"rank_change"`
	MainCost         float64 `json:"main_cost"`
	PERatio          float64 `json:"pe_ratio"`
	TurnoverRate     float64 `json:"turnover_rate"`
}

// StockData は1銘柄分の取得結果をまとめたものです。
type StockData struct {
	Price  HotStock
	Kline  []KlineData
	News   []NewsData
	Rating *StockRating
}
