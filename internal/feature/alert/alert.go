// Package alert は運用者向けのWebhook通知を提供します。
package alert

import (
	"fmt"
	"strings"
	"time"
)

// 通知ステータス
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Detail は通知本文に載せる1行の詳細です。表示順を保つためスライスで持ちます。
type Detail struct {
	Key   string
	Value string
}

// Alert は1件の通知です。
type Alert struct {
	Title   string
	Heading string // 本文の見出し。空ならTitle
	Status  string
	Message string
	Details []Detail
	Time    time.Time
}

// Markdown は通知本文をMarkdownで組み立てます。
func (a Alert) Markdown() string {
	icon := "✅"
	if a.Status != StatusSuccess {
		icon = "❌"
	}
	ts := a.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	var b strings.Builder
	heading := a.Heading
	if heading == "" {
		heading = a.Title
	}
	fmt.Fprintf(&b, "## %s %s\n\n", icon, heading)
	fmt.Fprintf(&b, "**状态**: %s\n\n", strings.ToUpper(a.Status))
	fmt.Fprintf(&b, "**消息**: %s\n\n", a.Message)
	fmt.Fprintf(&b, "**时间**: %s\n", ts.Format(time.DateTime))
	if len(a.Details) > 0 {
		b.WriteString("\n**详情**:\n")
		for _, d := range a.Details {
			fmt.Fprintf(&b, "- %s: %s\n", d.Key, d.Value)
		}
	}
	return b.String()
}
