package lexicon

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	defaultOnce     sync.Once
	defaultAnalyzer *Analyzer
	defaultErr      error
)

// newDefaultAnalyzer は組み込み辞書の読み込みをテスト間で1度にまとめます。
func newDefaultAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	defaultOnce.Do(func() {
		defaultAnalyzer, defaultErr = NewAnalyzer(Default())
	})
	require.NoError(t, defaultErr)
	return defaultAnalyzer
}

func TestPreprocess(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"大盘上涨！！ 详情 https://example.com/a?b=1 看这里", "大盘上涨 详情 看这里"},
		{"  A股\t\n牛市~~来了 ", "A股 牛市来了"},
		{"abc_123 $%^", "abc_123"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Preprocess(tt.in), "input %q", tt.in)
	}
}

func TestAnalyzer_Tokenize(t *testing.T) {
	t.Parallel()
	a := newDefaultAnalyzer(t)

	tests := []struct {
		name    string
		in      string
		contain []string
	}{
		{name: "lexicon words stay whole", in: "大盘上涨", contain: []string{"大盘", "上涨"}},
		{name: "domain word", in: "今天涨停了", contain: []string{"涨停"}},
		{name: "ordinary words are segmented", in: "贵州茅台业绩大增", contain: []string{"业绩"}},
		{name: "intensity word before sentiment word", in: "非常看好后市", contain: []string{"非常", "看好"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := a.Tokenize(tt.in)
			for _, w := range tt.contain {
				assert.Contains(t, got, w)
			}
		})
	}

	t.Run("whitespace and symbols are dropped", func(t *testing.T) {
		t.Parallel()
		for _, w := range a.Tokenize("大盘 ， 上涨 ！") {
			assert.NotEqual(t, " ", w)
			assert.NotEqual(t, "，", w)
			assert.NotEqual(t, "！", w)
		}
	})

	t.Run("ordinary text is not split into single runes", func(t *testing.T) {
		t.Parallel()
		got := a.Tokenize("宁德时代发布新电池技术")
		multi := 0
		for _, w := range got {
			if utf8.RuneCountInString(w) >= 2 {
				multi++
			}
		}
		assert.GreaterOrEqual(t, multi, 2, "tokens: %v", got)
	})
}

func TestAnalyzer_Analyze(t *testing.T) {
	t.Parallel()
	a := newDefaultAnalyzer(t)

	tests := []struct {
		name      string
		text      string
		wantLabel string
		wantScore float64
	}{
		{name: "empty text", text: "", wantLabel: "neutral", wantScore: 0},
		{name: "no lexicon hits", text: "今天天气不错", wantLabel: "neutral", wantScore: 0},
		{name: "positive only", text: "看好大盘上涨", wantLabel: "positive", wantScore: 1},
		{name: "negative only", text: "风险很大 下跌", wantLabel: "negative", wantScore: -1},
		{name: "balanced", text: "上涨 下跌", wantLabel: "neutral", wantScore: 0},
		// 非常 1.8 * 看好 vs 风险 1.0 => (1.8-1)/(2.8)
		{name: "intensity multiplies next word", text: "非常 看好 但是 风险", wantLabel: "positive", wantScore: 0.8 / 2.8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := a.Analyze(tt.text)
			assert.Equal(t, tt.wantLabel, got.Sentiment)
			assert.InDelta(t, tt.wantScore, got.Score, 1e-9)
		})
	}
}

func TestAnalyzer_Keywords(t *testing.T) {
	t.Parallel()
	a := newDefaultAnalyzer(t)

	tests := []struct {
		name    string
		text    string
		k       int
		anyOf   []string
		exclude []string
	}{
		{
			name:  "stock headline",
			text:  "贵州茅台业绩大增 白酒板块走强",
			k:     5,
			anyOf: []string{"茅台", "贵州茅台", "业绩", "白酒", "板块"},
		},
		{
			name:  "industry headline",
			text:  "宁德时代发布新电池技术 新能源汽车产业链受关注",
			k:     5,
			anyOf: []string{"宁德", "宁德时代", "电池", "新能源", "新能源汽车", "产业链"},
		},
		{
			name:    "stopwords are excluded",
			text:    "我们觉得大盘现在还是会上涨 大家觉得大盘怎么样",
			k:       10,
			anyOf:   []string{"大盘"},
			exclude: []string{"我们", "觉得", "现在", "还是", "大家", "怎么"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := a.Keywords(tt.text, tt.k)
			require.NotEmpty(t, got)
			assert.LessOrEqual(t, len(got), tt.k)

			found := false
			for _, w := range got {
				assert.GreaterOrEqual(t, utf8.RuneCountInString(w), 2, "keyword %q", w)
				for _, want := range tt.anyOf {
					if w == want {
						found = true
					}
				}
			}
			assert.True(t, found, "keywords %v contain none of %v", got, tt.anyOf)
			for _, w := range tt.exclude {
				assert.NotContains(t, got, w)
			}
		})
	}

	t.Run("empty text", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, a.Keywords("", 10))
	})
}

func TestParseCount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want int
	}{
		{"1.5万", 15000},
		{"3万", 30000},
		{"1234", 1234},
		{"12.7", 12},
		{"", 0},
		{"很多", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseCount(tt.in), "input %q", tt.in)
	}
}

func TestSourceWeight(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1.2, SourceWeight("eastmoney"))
	assert.Equal(t, 1.1, SourceWeight("xueqiu"))
	assert.Equal(t, 0.9, SourceWeight("weibo"))
	assert.Equal(t, 0.8, SourceWeight("tieba"))
	assert.Equal(t, 1.0, SourceWeight("other"))
}

func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("missing file uses defaults", func(t *testing.T) {
		t.Parallel()
		lex, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		require.NoError(t, err)
		assert.Equal(t, Default(), lex)
	})

	t.Run("partial override keeps other defaults", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "words.yaml")
		require.NoError(t, os.WriteFile(path, []byte("positive: [利好, 大涨]\nintensity:\n  超级: 2.5\n"), 0o644))

		lex, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"利好", "大涨"}, lex.Positive)
		assert.Equal(t, map[string]float64{"超级": 2.5}, lex.Intensity)
		assert.Equal(t, Default().Negative, lex.Negative)

		a, err := NewAnalyzer(lex)
		require.NoError(t, err)
		assert.Equal(t, "positive", a.Analyze("超级利好").Sentiment)
	})

	t.Run("invalid yaml is an error", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "words.yaml")
		require.NoError(t, os.WriteFile(path, []byte("positive: [unclosed"), 0o644))
		_, err := Load(path)
		assert.Error(t, err)
	})
}
