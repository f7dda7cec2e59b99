// Package entity は光伏ニュースのドメイン型を定義します。
package entity

import (
	"regexp"
	"strings"
)

// NewsType はニュースの区分です。
type NewsType string

const (
	Domestic      NewsType = "domestic"
	International NewsType = "international"
)

// Valid は既知の区分かを返します。
func (t NewsType) Valid() bool {
	return t == Domestic || t == International
}

// UnknownSource は来源が空のニュースを集計するときの名前です。
const UnknownSource = "Unknown"

// NewsItem は1件のニュースです。国内は title/date、国際は title_original/title_translated/publish_date を使います。
type NewsItem struct {
	Title           string `json:"title,omitempty"`
	TitleOriginal   string `json:"title_original,omitempty"`
	TitleTranslated string `json:"title_translated,omitempty"`
	Link            string `json:"link"`
	Date            string `json:"date,omitempty"`
	PublishDate     string `json:"publish_date,omitempty"`
	Source          string `json:"source"`
	Summary         string `json:"summary,omitempty"`
	ContentType     string `json:"content_type,omitempty"`
}

var leadingDate = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)

// SortDate は並び替えに使う日付文字列です。publish_date を優先します。
func (n NewsItem) SortDate() string {
	if n.PublishDate != "" {
		return n.PublishDate
	}
	return n.Date
}

// DisplayTitle は利用者に見せるタイトルです。翻訳済みタイトルを優先します。
func (n NewsItem) DisplayTitle() string {
	for _, s := range []string{n.TitleTranslated, n.Title, n.TitleOriginal} {
		if s != "" {
			return s
		}
	}
	return ""
}

// SourceName は集計用の来源名です。
func (n NewsItem) SourceName() string {
	if n.Source == "" {
		return UnknownSource
	}
	return n.Source
}

// LeadingDate は先頭の YYYY-MM-DD を取り出します。
func LeadingDate(s string) (string, bool) {
	m := leadingDate.FindString(strings.TrimSpace(s))
	return m, m != ""
}

// NewsFilter は一覧取得の絞り込み条件です。空文字は未指定です。
type NewsFilter struct {
	StartDate string
	EndDate   string
	Keyword   string
	Source    string
}

// QueryResult は一覧APIのレスポンスです。
type QueryResult struct {
	Success     bool           `json:"success"`
	Data        []NewsItem     `json:"data"`
	Count       int            `json:"count"`
	TotalCount  int            `json:"total_count"`
	SourceStats map[string]int `json:"source_stats"`
	LastUpdate  *string        `json:"last_update"`
}

// StatsResult は統計APIのレスポンスです。
type StatsResult struct {
	Success     bool           `json:"success"`
	TotalCount  int            `json:"total_count"`
	SourceStats map[string]int `json:"source_stats"`
	LastUpdate  *string        `json:"last_update"`
}

// TranslatedFile は translator_*.json の形式です。
type TranslatedFile struct {
	MergeTime string         `json:"merge_time"`
	Total     int            `json:"total_news"`
	Sources   map[string]int `json:"sources"`
	NewsList  []NewsItem     `json:"news_list"`
}
