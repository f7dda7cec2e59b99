package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"strings"

	"alpha_sentiment/internal/feature/stocks/domain/entity"
)

const (
	maxPromptNews     = 10
	maxContentRunes   = 200
	maxAnalysisItems  = 5
	defaultSummary    = "暂无分析摘要"
	analystSystemText = "你是一位专业的股票分析师，擅长从新闻中分析市场情绪。请以 JSON 格式返回分析结果。"
)

var (
	fenceRe = regexp.MustCompile("(?s)```(?:json)?")
	blobRe  = regexp.MustCompile(`\{[\s\S]*?\}`)
	quoted  = regexp.MustCompile(`"([^"]*)"|'([^']*)'`)
)

// field はLLM応答の1キー分の抽出パターンです。
type field struct {
	number *regexp.Regexp
	double *regexp.Regexp
	single *regexp.Regexp
	list   *regexp.Regexp
}

func newField(key string) field {
	prefix := `"?` + regexp.QuoteMeta(key) + `"?\s*[:=]\s*`
	return field{
		number: regexp.MustCompile(`(?i)` + prefix + `([-+]?\d*\.?\d+)`),
		double: regexp.MustCompile(`(?is)` + prefix + `"(.*?)"`),
		single: regexp.MustCompile(`(?is)` + prefix + `'(.*?)'`),
		list:   regexp.MustCompile(`(?is)` + prefix + `\[([^\]]*)\]`),
	}
}

var (
	scoreField        = newField("score")
	sentimentField    = newField("sentiment")
	summaryField      = newField("summary")
	keywordsField     = newField("keywords")
	tagsField         = newField("tags")
	bullishRatioField = newField("bullish_ratio")
	bearishRatioField = newField("bearish_ratio")
)

// analyzer はChatModelを使ってニュースの感情を分析します。
type analyzer struct {
	model ChatModel
}

var _ NewsAnalyzer = (*analyzer)(nil)

// NewAnalyzer はanalyzerを生成します。modelがnilの場合、分析は常にErrAnalyzerUnavailableを返します。
func NewAnalyzer(model ChatModel) *analyzer {
	return &analyzer{model: model}
}

// AnalyzeNews は銘柄ニュースをLLMに渡し、応答を正規化したSentimentAnalysisとして返します。
func (a *analyzer) AnalyzeNews(ctx context.Context, stockName string, news []entity.NewsData) (entity.SentimentAnalysis, error) {
	if a.model == nil {
		return entity.SentimentAnalysis{}, ErrAnalyzerUnavailable
	}
	if len(news) == 0 {
		return entity.SentimentAnalysis{}, ErrNoNews
	}

	content, err := a.model.Complete(ctx, analystSystemText, BuildAnalysisPrompt(stockName, news))
	if err != nil {
		return entity.SentimentAnalysis{}, fmt.Errorf("analyze %s: %w", stockName, err)
	}

	result := ParseAnalysis(content)
	slog.Debug("sentiment analyzed", "stock", stockName, "score", result.Score, "sentiment", result.Sentiment)
	return result, nil
}

// BuildAnalysisPrompt は上位10件のニュースから分析プロンプトを組み立てます。
func BuildAnalysisPrompt(stockName string, news []entity.NewsData) string {
	if len(news) > maxPromptNews {
		news = news[:maxPromptNews]
	}
	lines := make([]string, 0, len(news))
	for _, n := range news {
		lines = append(lines, fmt.Sprintf("【%s】%s\n%s", n.Source, n.Title, truncateRunes(n.Content, maxContentRunes)))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "请分析以下关于%s的新闻，给出情绪评估。\n\n", stockName)
	b.WriteString("新闻内容:\n")
	b.WriteString(strings.Join(lines, "\n\n"))
	b.WriteString(`

请以JSON格式返回分析结果，格式如下:
{
    "score": 65,
    "sentiment": "bullish",
    "keywords": ["利好", "增长", "突破"],
    "summary": "公司业绩表现良好，市场预期乐观，整体情绪偏向积极",
    "bullish_ratio": 0.7,
    "bearish_ratio": 0.1,
    "tags": ["业绩预增", "行业龙头"]
}

字段说明:
- score: 情绪得分(0-100，50为中性，越高越乐观)
- sentiment: 情绪倾向(bullish/bearish/neutral)
- keywords: 关键词列表(最多5个)
- summary: 一句话分析摘要(不超过80字)
- bullish_ratio: 利好新闻占比(0-1)
- bearish_ratio: 利空新闻占比(0-1)
- tags: 标签分类(最多3个)
`)
	return b.String()
}

// ParseAnalysis はLLMの応答からフィールドを抽出します。
// 厳密なJSONでなくても、キー単位の正規表現で拾えるものは拾います。
func ParseAnalysis(content string) entity.SentimentAnalysis {
	text := fenceRe.ReplaceAllString(content, "")
	if blob := blobRe.FindString(text); blob != "" {
		text = blob
	}

	score := entity.DefaultSentimentScore
	if v, ok := extractNumber(text, scoreField); ok {
		// int変換前に丸めないと巨大な値で桁あふれする
		score = int(math.Max(0, math.Min(100, v)))
	}

	sentiment := strings.ToLower(strings.TrimSpace(extractText(text, sentimentField)))
	if !entity.IsValidSentiment(sentiment) {
		sentiment = entity.SentimentNeutral
	}

	summary := strings.TrimSpace(extractText(text, summaryField))
	if summary == "" {
		summary = defaultSummary
	}

	return entity.SentimentAnalysis{
		Score:        score,
		Sentiment:    sentiment,
		Keywords:     capItems(extractList(text, keywordsField), maxAnalysisItems),
		Summary:      summary,
		BullishRatio: extractRatio(text, bullishRatioField),
		BearishRatio: extractRatio(text, bearishRatioField),
		Tags:         capItems(extractList(text, tagsField), maxAnalysisItems),
	}
}

func extractNumber(text string, f field) (float64, bool) {
	m := f.number.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func extractRatio(text string, f field) float64 {
	v, ok := extractNumber(text, f)
	if !ok {
		return 0
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func extractText(text string, f field) string {
	for _, re := range []*regexp.Regexp{f.double, f.single} {
		if m := re.FindStringSubmatch(text); m != nil {
			return m[1]
		}
	}
	return ""
}

func extractList(text string, f field) []string {
	m := f.list.FindStringSubmatch(text)
	if m == nil {
		return []string{}
	}
	body := m[1]

	items := make([]string, 0)
	for _, q := range quoted.FindAllStringSubmatch(body, -1) {
		v := q[1]
		if v == "" {
			v = q[2]
		}
		if v = strings.TrimSpace(v); v != "" {
			items = append(items, v)
		}
	}
	if len(items) > 0 {
		return items
	}

	// 引用符なしの場合はカンマ区切りとして扱う
	for _, part := range strings.Split(body, ",") {
		if v := strings.Trim(strings.TrimSpace(part), `"'`); v != "" {
			items = append(items, v)
		}
	}
	return items
}

func capItems(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
