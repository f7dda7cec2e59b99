package lexicon

import (
	"regexp"
	"strconv"
	"strings"

	"alpha_sentiment/internal/feature/marketsentiment/domain/entity"
)

// DefaultKeywords はKeywordsの既定件数です。
const DefaultKeywords = 10

var (
	urlRe    = regexp.MustCompile(`http\S+`)
	symbolRe = regexp.MustCompile(`[^\p{L}\p{N}_\s\p{Han}]`)
	spaceRe  = regexp.MustCompile(`\s+`)
)

// sourceWeights は投稿元ごとの重みです。
var sourceWeights = map[string]float64{
	"eastmoney": 1.2,
	"xueqiu":    1.1,
	"weibo":     0.9,
	"tieba":     0.8,
}

// Result は1テキストの感情分析結果です。Scoreは-1〜1です。
type Result struct {
	Sentiment     string
	Score         float64
	PositiveScore float64
	NegativeScore float64
}

// Analyzer は辞書ベースの感情分析器です。生成後は読み取り専用のため並行利用できます。
type Analyzer struct {
	seg       *segmenter
	positive  map[string]struct{}
	negative  map[string]struct{}
	intensity map[string]float64
	stopwords map[string]struct{}
}

// NewAnalyzer は辞書から Analyzer を生成します。
// 感情語、強調語、領域語はgseのユーザー辞書に加え、1語として切り出されるようにします。
// 組み込み辞書の読み込みには時間がかかるため、起動時に1度だけ生成してください。
func NewAnalyzer(lex Lexicon) (*Analyzer, error) {
	intensityWords := make([]string, 0, len(lex.Intensity))
	for w := range lex.Intensity {
		intensityWords = append(intensityWords, w)
	}
	seg, err := newSegmenter(lex.Positive, lex.Negative, lex.Neutral, lex.Domain, intensityWords)
	if err != nil {
		return nil, err
	}
	return &Analyzer{
		seg:       seg,
		positive:  toSet(lex.Positive),
		negative:  toSet(lex.Negative),
		intensity: lex.Intensity,
		stopwords: toSet(lex.Stopwords),
	}, nil
}

// Preprocess はURLと記号を取り除き、空白を1つにまとめます。
func Preprocess(text string) string {
	if text == "" {
		return ""
	}
	text = urlRe.ReplaceAllString(text, "")
	text = symbolRe.ReplaceAllString(text, "")
	text = spaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// Tokenize はtextを分かち書きします。空白と記号は含みません。
func (a *Analyzer) Tokenize(text string) []string {
	return a.seg.Cut(text)
}

// Analyze はtextの感情を判定します。直前が強調語の場合、その倍率を掛けます。
func (a *Analyzer) Analyze(text string) Result {
	if text == "" {
		return Result{Sentiment: entity.SentimentNeutral}
	}

	words := a.Tokenize(text)
	var pos, neg float64
	for i, w := range words {
		weight := 1.0
		if i > 0 {
			if f, ok := a.intensity[words[i-1]]; ok {
				weight *= f
			}
		}
		if _, ok := a.positive[w]; ok {
			pos += weight
		} else if _, ok := a.negative[w]; ok {
			neg += weight
		}
	}

	total := pos + neg
	if total == 0 {
		return Result{Sentiment: entity.SentimentNeutral}
	}

	score := (pos - neg) / total
	score = max(-1.0, min(1.0, score))

	label := entity.SentimentNeutral
	switch {
	case score > 0.1:
		label = entity.SentimentPositive
	case score < -0.1:
		label = entity.SentimentNegative
	}
	return Result{Sentiment: label, Score: score, PositiveScore: pos, NegativeScore: neg}
}

// Keywords はTF-IDFで重要度の高い語を最大k件返します。辞書のストップワードは除きます。
func (a *Analyzer) Keywords(text string, k int) []string {
	if k <= 0 {
		k = DefaultKeywords
	}
	if strings.TrimSpace(text) == "" {
		return []string{}
	}
	// ストップワードを除いた後でもk件残るよう多めに取る
	tags := a.seg.ExtractTags(text, k+len(a.stopwords))
	out := make([]string, 0, k)
	for _, w := range tags {
		if _, stop := a.stopwords[w]; stop {
			continue
		}
		out = append(out, w)
		if len(out) == k {
			break
		}
	}
	return out
}

// ParseCount は "1.5万" のような表記を整数に変換します。解釈できない場合は0です。
func ParseCount(v string) int {
	s := strings.TrimSpace(v)
	if s == "" {
		return 0
	}
	mult := 1.0
	if strings.Contains(s, "万") {
		s = strings.ReplaceAll(s, "万", "")
		mult = 10000
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return int(f * mult)
}

// SourceWeight は投稿元の重みを返します。未知の投稿元は1.0です。
func SourceWeight(source string) float64 {
	if w, ok := sourceWeights[source]; ok {
		return w
	}
	return 1.0
}

func toSet(words []string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
