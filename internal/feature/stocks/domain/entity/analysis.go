package entity

// 感情ラベル
const (
	SentimentBullish = "bullish"
	SentimentBearish = "bearish"
	SentimentNeutral = "neutral"
)

// SentimentAnalysis はLLMによるニュース感情分析の結果です。
// Scoreは0〜100（50が中立）、各比率は0〜1です。
type SentimentAnalysis struct {
	Score        int      `json:"score"`
	Sentiment    string   `json:"sentiment"`
	Keywords     []string `json:"keywords"`
	Summary      string   `json:"summary"`
	BullishRatio float64  `json:"bullish_ratio"`
	BearishRatio float64  `json:"bearish_ratio"`
	Tags         []string `json:"tags"`
}

// IsValidSentiment はラベルが bullish / bearish / neutral のいずれかかを返します。
func IsValidSentiment(s string) bool {
	switch s {
	case SentimentBullish, SentimentBearish, SentimentNeutral:
		return true
	}
	return false
}
