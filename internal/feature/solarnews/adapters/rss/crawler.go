// Package rss はRSS/Atomフィードとニュース一覧ページから光伏ニュースを収集します。
package rss

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"
	"github.com/mmcdole/gofeed"
	"gopkg.in/yaml.v3"

	"alpha_sentiment/internal/feature/solarnews/domain/entity"
	"alpha_sentiment/internal/feature/solarnews/usecase"
	"alpha_sentiment/internal/shared/env"
)

const (
	// EnvFeedsFile はフィード定義YAMLのパスを指定する環境変数です。
	EnvFeedsFile = "SOLAR_FEEDS_FILE"
	// DefaultRecentDays は収集対象とする日数です。
	DefaultRecentDays = 7

	summaryMaxRunes = 500
)

// フィードの形式
const (
	// FormatRSS はRSS/Atomフィードです。Formatが空の場合もこれです。
	FormatRSS = "rss"
	// FormatHTML はRSSを持たないサイトのニュース一覧ページです。
	FormatHTML = "html"
)

// Feed は1つのフィード定義です。
type Feed struct {
	Name        string          `yaml:"name"`
	URL         string          `yaml:"url"`
	Source      string          `yaml:"source"`
	Kind        entity.NewsType `yaml:"kind"`
	ContentType string          `yaml:"content_type"`
	Format      string          `yaml:"format"`
	// LinkPattern は FormatHTML で記事リンクとみなすURLの部分文字列です。
	LinkPattern string `yaml:"link_pattern"`
}

// Config はフィード一覧と収集期間です。
type Config struct {
	RecentDays int    `yaml:"recent_days"`
	Feeds      []Feed `yaml:"feeds"`
}

// DefaultConfig は組み込みのフィード定義です。
func DefaultConfig() Config {
	return Config{
		RecentDays: DefaultRecentDays,
		Feeds: []Feed{
			{Name: "pvmagazine", URL: "https://www.pv-magazine.com/feed/", Source: "PV Magazine", Kind: entity.International, ContentType: "news"},
			{Name: "iea", URL: "https://www.iea.org/rss/news", Source: "IEA", Kind: entity.International, ContentType: "news"},
			{
				Name: "irena", URL: "https://www.irena.org/News", Source: "IRENA", Kind: entity.International, ContentType: "news",
				Format: FormatHTML, LinkPattern: "irena.org/News/",
			},
		},
	}
}

// LoadConfig はYAMLからフィード定義を読みます。pathが空かファイルが無ければ組み込み定義です。
func LoadConfig(path string) (Config, error) {
	if path == "" {
		path = env.String(EnvFeedsFile, "")
	}
	if path == "" {
		return DefaultConfig(), nil
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read feeds file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse feeds file: %w", err)
	}
	if cfg.RecentDays <= 0 {
		cfg.RecentDays = DefaultRecentDays
	}
	if len(cfg.Feeds) == 0 {
		cfg.Feeds = DefaultConfig().Feeds
	}
	for i, f := range cfg.Feeds {
		if f.Kind == "" {
			cfg.Feeds[i].Kind = entity.International
		}
		if f.Name == "" {
			return Config{}, fmt.Errorf("feed %d has no name", i)
		}
		if !cfg.Feeds[i].Kind.Valid() {
			return Config{}, fmt.Errorf("feed %s: %w", f.Name, usecase.ErrInvalidNewsType)
		}
		switch f.Format {
		case "", FormatRSS:
		case FormatHTML:
			if f.LinkPattern == "" {
				return Config{}, fmt.Errorf("feed %s: html format needs link_pattern", f.Name)
			}
		default:
			return Config{}, fmt.Errorf("feed %s: unknown format %q", f.Name, f.Format)
		}
	}
	return cfg, nil
}

// Crawler は1つのフィードを読むクローラーです。
type Crawler struct {
	feed       Feed
	recentDays int
	client     *http.Client
	parser     *gofeed.Parser
	now        func() time.Time
}

var _ usecase.Crawler = (*Crawler)(nil)

// NewCrawler は Crawler を生成します。
func NewCrawler(feed Feed, recentDays int, client *http.Client) *Crawler {
	if recentDays <= 0 {
		recentDays = DefaultRecentDays
	}
	if client == nil {
		client = http.DefaultClient
	}
	p := gofeed.NewParser()
	p.Client = client
	return &Crawler{feed: feed, recentDays: recentDays, client: client, parser: p, now: time.Now}
}

// NewCrawlers は設定のフィードすべてについて Crawler を生成します。
func NewCrawlers(cfg Config, client *http.Client) []usecase.Crawler {
	out := make([]usecase.Crawler, 0, len(cfg.Feeds))
	for _, f := range cfg.Feeds {
		out = append(out, NewCrawler(f, cfg.RecentDays, client))
	}
	return out
}

// Name はクローラー名です。
func (c *Crawler) Name() string { return c.feed.Name }

// Kind はニュース区分です。
func (c *Crawler) Kind() entity.NewsType { return c.feed.Kind }

// Crawl はフィードを取得し、直近 recentDays 日の記事を返します。日付の無い記事も含めます。
func (c *Crawler) Crawl(ctx context.Context) ([]entity.NewsItem, error) {
	if c.feed.Format == FormatHTML {
		return c.crawlListing(ctx)
	}

	feed, err := c.parser.ParseURLWithContext(c.feed.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", c.feed.Name, err)
	}

	cutoff := c.now().AddDate(0, 0, -c.recentDays)
	source := c.feed.Source
	if source == "" {
		source = feed.Title
	}

	items := make([]entity.NewsItem, 0, len(feed.Items))
	for _, it := range feed.Items {
		title := strings.TrimSpace(it.Title)
		if title == "" {
			continue
		}
		published := it.PublishedParsed
		if published == nil {
			published = it.UpdatedParsed
		}
		if published != nil && published.Before(cutoff) {
			continue
		}

		items = append(items, c.newItem(ctx, source, title, it.Link, stripTags(it.Description), published))
	}
	return items, nil
}

// newItem はフィードの区分に合わせてNewsItemを組み立てます。summaryが空なら記事本文から補います。
func (c *Crawler) newItem(ctx context.Context, source, title, link, summary string, published *time.Time) entity.NewsItem {
	n := entity.NewsItem{
		Link:        link,
		Source:      source,
		ContentType: c.feed.ContentType,
		Summary:     truncateRunes(summary, summaryMaxRunes),
	}
	date := ""
	if published != nil {
		date = published.Format(time.DateOnly)
	}
	if c.feed.Kind == entity.International {
		n.TitleOriginal = title
		n.PublishDate = date
	} else {
		n.Title = title
		n.Date = date
	}
	if n.Summary == "" && link != "" {
		body, err := c.fetchBody(ctx, link)
		if err == nil {
			n.Summary = truncateRunes(body, summaryMaxRunes)
		}
	}
	return n
}

// fetchBody は記事ページを取得し、readabilityで本文テキストを取り出します。
func (c *Crawler) fetchBody(ctx context.Context, link string) (string, error) {
	u, err := url.Parse(link)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: status %d", link, resp.StatusCode)
	}

	article, err := readability.FromReader(resp.Body, u)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(spaceRe.ReplaceAllString(article.TextContent, " ")), nil
}

var (
	tagRe   = regexp.MustCompile(`<[^>]*>`)
	spaceRe = regexp.MustCompile(`\s+`)
)

func stripTags(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(tagRe.ReplaceAllString(s, " "), " "))
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
