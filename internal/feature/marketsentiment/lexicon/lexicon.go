// Package lexicon は感情辞書による中国語テキストの感情分析を提供します。
package lexicon

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Lexicon は感情辞書です。YAMLで上書きできます。
type Lexicon struct {
	Positive  []string           `yaml:"positive"`
	Negative  []string           `yaml:"negative"`
	Neutral   []string           `yaml:"neutral"`
	Intensity map[string]float64 `yaml:"intensity"`
	Domain    []string           `yaml:"domain"`
	Stopwords []string           `yaml:"stopwords"`
}

// Default は組み込みの感情辞書を返します。
func Default() Lexicon {
	return Lexicon{
		Positive: []string{"涨", "上涨", "牛市", "买入", "看好", "机会", "赚钱", "突破"},
		Negative: []string{"跌", "下跌", "熊市", "卖出", "风险", "亏钱", "套牢", "崩盘"},
		Neutral:  []string{"震荡", "横盘", "观望", "调整", "平稳"},
		Intensity: map[string]float64{
			"强烈": 2.0, "非常": 1.8, "极度": 2.2, "特别": 1.7,
			"比较": 1.3, "稍微": 0.8, "有点": 0.9, "十分": 1.6,
		},
		Domain: []string{"股票", "股市", "A股", "大盘", "牛市", "熊市", "涨停", "跌停"},
		Stopwords: []string{
			"今天", "明天", "我们", "你们", "他们", "这个", "那个", "什么", "没有", "就是",
			"还是", "可以", "一个", "大家", "自己", "已经", "因为", "所以", "但是", "如果",
			"这样", "现在", "真的", "感觉", "觉得", "怎么", "还有", "不是",
		},
	}
}

// Load はYAMLファイルから辞書を読み込みます。ファイルが無ければ組み込み辞書を返します。
// YAMLで指定されなかった項目は組み込みの値を使います。
func Load(path string) (Lexicon, error) {
	lex := Default()
	if path == "" {
		return lex, nil
	}

	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Warn("sentiment lexicon file not found, using defaults", "path", path)
		return lex, nil
	}
	if err != nil {
		return lex, fmt.Errorf("read lexicon: %w", err)
	}

	var override Lexicon
	if err := yaml.Unmarshal(b, &override); err != nil {
		return lex, fmt.Errorf("parse lexicon %s: %w", path, err)
	}
	if len(override.Positive) > 0 {
		lex.Positive = override.Positive
	}
	if len(override.Negative) > 0 {
		lex.Negative = override.Negative
	}
	if len(override.Neutral) > 0 {
		lex.Neutral = override.Neutral
	}
	if len(override.Intensity) > 0 {
		lex.Intensity = override.Intensity
	}
	if len(override.Domain) > 0 {
		lex.Domain = override.Domain
	}
	if len(override.Stopwords) > 0 {
		lex.Stopwords = override.Stopwords
	}
	slog.Info("sentiment lexicon loaded", "path", path,
		"positive", len(lex.Positive), "negative", len(lex.Negative))
	return lex, nil
}
