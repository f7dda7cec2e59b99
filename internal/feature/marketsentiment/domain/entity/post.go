package entity

import "encoding/json"

// 投稿の感情ラベル
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// RawPost は掲示板やSNSから収集した1件の投稿です。
// 閲覧数やコメント数は "1.5万" のような文字列の場合があります。
type RawPost struct {
	Source       string    `json:"source"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	Author       string    `json:"author"`
	ReadCount    FlexCount `json:"read_count"`
	CommentCount FlexCount `json:"comment_count"`
	PostTime     string    `json:"post_time"`
}

// FlexCount は数値でも文字列でも受け付けるカウント値です。元の表記をそのまま保持します。
type FlexCount string

// UnmarshalJSON は数値・文字列・nullのいずれも受け付けます。
func (c *FlexCount) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*c = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*c = FlexCount(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*c = FlexCount(n.String())
	return nil
}

// ProcessedPost は感情スコアを付与した投稿です。
type ProcessedPost struct {
	ID           string   `json:"id"`
	Source       string   `json:"source"`
	Title        string   `json:"title"`
	Content      string   `json:"content"`
	Sentiment    string   `json:"sentiment"`
	Score        float64  `json:"sentiment_score"`
	Keywords     []string `json:"keywords"`
	Weight       float64  `json:"weight"`
	ReadCount    int      `json:"read_count"`
	CommentCount int      `json:"comment_count"`
	PostTime     string   `json:"post_time"`
	ProcessedAt  string   `json:"processed_time"`
}
