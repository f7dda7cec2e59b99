package rss

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"alpha_sentiment/internal/feature/solarnews/domain/entity"
)

const (
	// 一覧ページのナビゲーションリンクを除くため、短い見出しは記事とみなさない
	listingMinTitleRunes = 20
	listingMaxItems      = 20
)

// listingLink は一覧ページから拾った記事リンクです。
type listingLink struct {
	title     string
	href      string
	published *time.Time
}

// crawlListing は一覧ページのリンクのうち LinkPattern を含むものを記事として返します。
// 日付は <time datetime> があれば使い、recentDays より古い記事は除きます。
func (c *Crawler) crawlListing(ctx context.Context) ([]entity.NewsItem, error) {
	base, err := url.Parse(c.feed.URL)
	if err != nil {
		return nil, fmt.Errorf("parse listing url %s: %w", c.feed.Name, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.feed.URL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch listing %s: %w", c.feed.Name, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch listing %s: status %d", c.feed.Name, resp.StatusCode)
	}
	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse listing %s: %w", c.feed.Name, err)
	}

	links := extractListingLinks(doc, base, c.feed.LinkPattern)
	cutoff := c.now().AddDate(0, 0, -c.recentDays)
	source := c.feed.Source
	if source == "" {
		source = c.feed.Name
	}

	items := make([]entity.NewsItem, 0, len(links))
	for _, l := range links {
		if l.published != nil && l.published.Before(cutoff) {
			continue
		}
		items = append(items, c.newItem(ctx, source, l.title, l.href, "", l.published))
		if len(items) == listingMaxItems {
			break
		}
	}
	return items, nil
}

// extractListingLinks は文書順に記事リンクを集めます。同じ見出しは最初の1件だけ残します。
func extractListingLinks(doc *html.Node, base *url.URL, pattern string) []listingLink {
	var out []listingLink
	seen := make(map[string]struct{})

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.A {
			if l, ok := toListingLink(n, base, pattern); ok {
				if _, dup := seen[l.title]; !dup {
					seen[l.title] = struct{}{}
					out = append(out, l)
				}
			}
			return
		}
		for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
			walk(ch)
		}
	}
	walk(doc)
	return out
}

func toListingLink(a *html.Node, base *url.URL, pattern string) (listingLink, bool) {
	href := strings.TrimSpace(attr(a, "href"))
	if href == "" || strings.HasPrefix(href, "#") {
		return listingLink{}, false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return listingLink{}, false
	}
	abs := base.ResolveReference(ref).String()
	if !strings.Contains(abs, pattern) {
		return listingLink{}, false
	}

	title := strings.TrimSpace(spaceRe.ReplaceAllString(textContent(a), " "))
	if utf8.RuneCountInString(title) < listingMinTitleRunes {
		return listingLink{}, false
	}
	return listingLink{title: title, href: abs, published: findTime(a)}, true
}

// findTime はリンク内、なければ親要素内の最初の <time datetime> を読みます。
func findTime(a *html.Node) *time.Time {
	for _, scope := range []*html.Node{a, a.Parent} {
		if scope == nil {
			continue
		}
		if t := firstTime(scope); t != nil {
			return t
		}
	}
	return nil
}

func firstTime(n *html.Node) *time.Time {
	if n.Type == html.ElementNode && n.DataAtom == atom.Time {
		raw := strings.TrimSpace(attr(n, "datetime"))
		for _, layout := range []string{time.RFC3339, time.DateOnly} {
			if t, err := time.Parse(layout, raw); err == nil {
				return &t
			}
		}
	}
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		if t := firstTime(ch); t != nil {
			return t
		}
	}
	return nil
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			b.WriteString(n.Data)
			b.WriteByte(' ')
		case n.Type == html.ElementNode && n.DataAtom == atom.Time:
			// 日付は見出しに含めない
			return
		}
		for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
			walk(ch)
		}
	}
	walk(n)
	return b.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
