package usecase

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"alpha_sentiment/internal/feature/marketsentiment/domain/entity"
	"alpha_sentiment/internal/feature/marketsentiment/lexicon"
)

const (
	minTextRunes   = 5
	topKeywordsMax = 15
)

// Calculator は投稿のスコア付けと日次指数の算出を行います。
type Calculator struct {
	analyzer *lexicon.Analyzer
	now      func() time.Time
}

// NewCalculator は Calculator を生成します。
func NewCalculator(analyzer *lexicon.Analyzer) *Calculator {
	return &Calculator{analyzer: analyzer, now: time.Now}
}

// Process は各投稿をクリーニングしてスコアを付けます。5文字未満の投稿は捨てます。
func (c *Calculator) Process(posts []entity.RawPost) []entity.ProcessedPost {
	processedAt := c.now().Format(time.RFC3339)
	out := make([]entity.ProcessedPost, 0, len(posts))

	for i, p := range posts {
		cleaned := lexicon.Preprocess(p.Title + " " + p.Content)
		if len([]rune(cleaned)) < minTextRunes {
			continue
		}
		source := p.Source
		if source == "" {
			source = "unknown"
		}

		res := c.analyzer.Analyze(cleaned)
		out = append(out, entity.ProcessedPost{
			ID:           fmt.Sprintf("%s_%d", source, i),
			Source:       source,
			Title:        p.Title,
			Content:      cleaned,
			Sentiment:    res.Sentiment,
			Score:        res.Score,
			Keywords:     c.analyzer.Keywords(cleaned, lexicon.DefaultKeywords),
			Weight:       lexicon.SourceWeight(source),
			ReadCount:    lexicon.ParseCount(string(p.ReadCount)),
			CommentCount: lexicon.ParseCount(string(p.CommentCount)),
			PostTime:     p.PostTime,
			ProcessedAt:  processedAt,
		})
	}
	return out
}

// Calculate は処理済み投稿から日次レポートを作ります。
func (c *Calculator) Calculate(posts []entity.ProcessedPost, date string) (entity.Report, error) {
	if len(posts) == 0 {
		return entity.Report{}, ErrNoPosts
	}

	dist := map[string]int{
		entity.SentimentPositive: 0,
		entity.SentimentNegative: 0,
		entity.SentimentNeutral:  0,
	}
	bySource := make(map[string][]entity.ProcessedPost)
	for _, p := range posts {
		dist[p.Sentiment]++
		bySource[p.Source] = append(bySource[p.Source], p)
	}

	sources := make(map[string]entity.SourceStatistics, len(bySource))
	for name, ps := range bySource {
		positive := 0
		for _, p := range ps {
			if p.Sentiment == entity.SentimentPositive {
				positive++
			}
		}
		sources[name] = entity.SourceStatistics{
			Index:         weightedIndex(ps),
			PostCount:     len(ps),
			PositiveRatio: float64(positive) / float64(len(ps)),
		}
	}

	index := weightedIndex(posts)
	state := MarketState(index)
	n := float64(len(posts))

	return entity.Report{
		Date:                  date,
		TotalPosts:            len(posts),
		SentimentDistribution: dist,
		Index:                 index,
		SourceStatistics:      sources,
		TopKeywords:           topKeywords(posts, topKeywordsMax),
		Intensity:             intensity(posts),
		MarketState:           state,
		Confidence:            (math.Min(1, n/50) + math.Min(1, float64(len(bySource))/4)) / 2,
		Recommendation:        Recommend(state),
	}, nil
}

// weightedIndex は 50 + mean(score*weight)*50 を0〜100に丸めた値です。
func weightedIndex(posts []entity.ProcessedPost) float64 {
	if len(posts) == 0 {
		return 50
	}
	sum := 0.0
	for _, p := range posts {
		sum += p.Score * p.Weight
	}
	return math.Max(0, math.Min(100, 50+sum/float64(len(posts))*50))
}

func intensity(posts []entity.ProcessedPost) entity.Intensity {
	n := float64(len(posts))
	var absSum, sum float64
	for _, p := range posts {
		absSum += math.Abs(p.Score)
		sum += p.Score
	}
	out := entity.Intensity{AverageIntensity: absSum / n}
	if len(posts) < 2 {
		return out
	}
	mean := sum / n
	var sq float64
	for _, p := range posts {
		sq += (p.Score - mean) * (p.Score - mean)
	}
	out.Volatility = math.Sqrt(sq / (n - 1))
	return out
}

func topKeywords(posts []entity.ProcessedPost, k int) []entity.KeywordCount {
	counts := make(map[string]int)
	order := make([]string, 0)
	for _, p := range posts {
		for _, w := range p.Keywords {
			if counts[w] == 0 {
				order = append(order, w)
			}
			counts[w]++
		}
	}
	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })
	if len(order) > k {
		order = order[:k]
	}
	out := make([]entity.KeywordCount, 0, len(order))
	for _, w := range order {
		out = append(out, entity.KeywordCount{Word: w, Count: counts[w]})
	}
	return out
}

// MarketState は指数を市場状態に変換します。
func MarketState(index float64) string {
	switch {
	case index >= 70:
		return entity.StateOptimistic
	case index >= 60:
		return entity.StateSlightlyOptimistic
	case index >= 45:
		return entity.StateNeutral
	case index >= 30:
		return entity.StateSlightlyPessimistic
	default:
		return entity.StatePessimistic
	}
}

// Recommend は市場状態から投資アドバイスを返します。
func Recommend(state string) entity.Recommendation {
	switch {
	case strings.Contains(state, "乐观"):
		return entity.Recommendation{Outlook: "积极", Action: "考虑逢低布局优质标的", RiskLevel: "中等"}
	case strings.Contains(state, "悲观"):
		return entity.Recommendation{Outlook: "谨慎", Action: "控制仓位，等待更好时机", RiskLevel: "较高"}
	default:
		return entity.Recommendation{Outlook: "中性", Action: "观望为主，谨慎操作", RiskLevel: "中等"}
	}
}
