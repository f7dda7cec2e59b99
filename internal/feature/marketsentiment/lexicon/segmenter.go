package lexicon

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-ego/gse"
	"github.com/go-ego/gse/hmm/extracker"
)

// userWordFreq は辞書語彙を優先的に1語として切り出すための頻度です。
const userWordFreq = 20000

// segmenter はgseの分かち書きとTF-IDFキーワード抽出をまとめたものです。
type segmenter struct {
	seg  gse.Segmenter
	tags extracker.TagExtracter
}

// newSegmenter は組み込みの中国語辞書とIDFを読み込み、wordsをユーザー辞書として追加します。
// 1文字の語は元の辞書にあるため追加しません。
func newSegmenter(words ...[]string) (*segmenter, error) {
	seg, err := gse.NewEmbed()
	if err != nil {
		return nil, fmt.Errorf("load gse dictionary: %w", err)
	}
	for _, list := range words {
		for _, w := range list {
			if utf8.RuneCountInString(w) < 2 {
				continue
			}
			if err := seg.AddToken(w, userWordFreq); err != nil {
				return nil, fmt.Errorf("add word %q: %w", w, err)
			}
		}
	}

	s := &segmenter{seg: seg}
	s.tags.WithGse(seg)
	if err := s.tags.LoadIdf(); err != nil {
		return nil, fmt.Errorf("load idf: %w", err)
	}
	return s, nil
}

// Cut はtextを語に分割し、空白と記号だけの語を捨てます。
func (s *segmenter) Cut(text string) []string {
	raw := s.seg.Cut(text, true)
	out := make([]string, 0, len(raw))
	for _, w := range raw {
		w = strings.TrimSpace(w)
		if w == "" || !strings.ContainsFunc(w, isContentRune) {
			continue
		}
		out = append(out, w)
	}
	return out
}

// ExtractTags はTF-IDFの重みが大きい順に最大k語を返します。
func (s *segmenter) ExtractTags(text string, k int) []string {
	tags := s.tags.ExtractTags(text, k)
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		out = append(out, t.GetText())
	}
	return out
}

func isContentRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
