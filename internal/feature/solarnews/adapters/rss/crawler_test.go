package rss

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alpha_sentiment/internal/feature/solarnews/domain/entity"
)

const feedTmpl = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Test Solar Feed</title>
  <link>%[1]s</link>
  <description>test</description>
  <item>
    <title> Record solar installations </title>
    <link>%[1]s/news/1</link>
    <description><![CDATA[<p>Installations <b>grew</b> 40%%.</p>]]></description>
    <pubDate>Sun, 09 Mar 2025 08:00:00 +0000</pubDate>
  </item>
  <item>
    <title>Storage tender opens</title>
    <link>%[1]s/article</link>
    <pubDate>Mon, 10 Mar 2025 06:00:00 +0000</pubDate>
  </item>
  <item>
    <title>Old news</title>
    <link>%[1]s/news/old</link>
    <description>old</description>
    <pubDate>Sat, 01 Feb 2025 08:00:00 +0000</pubDate>
  </item>
  <item>
    <title></title>
    <link>%[1]s/news/empty</link>
  </item>
</channel>
</rss>`

func newFeedServer(t *testing.T) *httptest.Server {
	t.Helper()
	body := strings.Repeat("Solar panels are being installed across the region at a record pace. ", 20)
	mux := http.NewServeMux()
	var srv *httptest.Server
	mux.HandleFunc("/feed", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = fmt.Fprintf(w, feedTmpl, srv.URL)
	})
	mux.HandleFunc("/article", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = fmt.Fprintf(w, `<html><head><title>Storage</title></head><body>
			<nav>menu</nav><article><h1>Storage tender opens</h1><p>%s</p><p>%s</p></article></body></html>`, body, body)
	})
	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestCrawler_Crawl_International(t *testing.T) {
	t.Parallel()
	srv := newFeedServer(t)

	c := NewCrawler(Feed{Name: "pv", URL: srv.URL + "/feed", Source: "PV Magazine", Kind: entity.International, ContentType: "news"}, 7, srv.Client())
	c.now = func() time.Time { return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC) }

	items, err := c.Crawl(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)

	first := items[0]
	assert.Equal(t, "Record solar installations", first.TitleOriginal)
	assert.Empty(t, first.Title)
	assert.Equal(t, "2025-03-09", first.PublishDate)
	assert.Equal(t, "PV Magazine", first.Source)
	assert.Equal(t, "news", first.ContentType)
	assert.Equal(t, "Installations grew 40%.", first.Summary)

	second := items[1]
	assert.Equal(t, "Storage tender opens", second.TitleOriginal)
	assert.Contains(t, second.Summary, "Solar panels are being installed")
	assert.Len(t, []rune(second.Summary), summaryMaxRunes)
}

func TestCrawler_Crawl_DomesticUsesFeedTitleAndDate(t *testing.T) {
	t.Parallel()
	srv := newFeedServer(t)

	c := NewCrawler(Feed{Name: "cn", URL: srv.URL + "/feed", Kind: entity.Domestic}, 40, srv.Client())
	c.now = func() time.Time { return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC) }

	items, err := c.Crawl(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 3, "40 days window includes the February item")
	assert.Equal(t, "Record solar installations", items[0].Title)
	assert.Equal(t, "2025-03-09", items[0].Date)
	assert.Equal(t, "Test Solar Feed", items[0].Source)
	assert.Equal(t, "cn", c.Name())
	assert.Equal(t, entity.Domestic, c.Kind())
}

func TestCrawler_Crawl_FeedError(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewCrawler(Feed{Name: "bad", URL: srv.URL, Kind: entity.International}, 7, srv.Client())
	_, err := c.Crawl(context.Background())
	assert.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	t.Run("missing file uses defaults", func(t *testing.T) {
		t.Parallel()
		cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), cfg)
	})

	t.Run("yaml overrides feeds", func(t *testing.T) {
		t.Parallel()
		p := filepath.Join(t.TempDir(), "feeds.yaml")
		require.NoError(t, os.WriteFile(p, []byte(`
recent_days: 3
feeds:
  - name: nea
    url: https://example.com/nea.xml
    source: 国家能源局
    kind: domestic
  - name: irena
    url: https://example.com/irena.xml
`), 0o644))

		cfg, err := LoadConfig(p)
		require.NoError(t, err)
		assert.Equal(t, 3, cfg.RecentDays)
		require.Len(t, cfg.Feeds, 2)
		assert.Equal(t, entity.Domestic, cfg.Feeds[0].Kind)
		assert.Equal(t, entity.International, cfg.Feeds[1].Kind)
		assert.Len(t, NewCrawlers(cfg, nil), 2)
	})

	t.Run("invalid kind", func(t *testing.T) {
		t.Parallel()
		p := filepath.Join(t.TempDir(), "feeds.yaml")
		require.NoError(t, os.WriteFile(p, []byte("feeds:\n  - name: x\n    url: u\n    kind: weekly\n"), 0o644))
		_, err := LoadConfig(p)
		assert.Error(t, err)
	})

	t.Run("html format needs link_pattern", func(t *testing.T) {
		t.Parallel()
		p := filepath.Join(t.TempDir(), "feeds.yaml")
		require.NoError(t, os.WriteFile(p, []byte("feeds:\n  - name: x\n    url: u\n    format: html\n"), 0o644))
		_, err := LoadConfig(p)
		assert.Error(t, err)
	})

	t.Run("unknown format", func(t *testing.T) {
		t.Parallel()
		p := filepath.Join(t.TempDir(), "feeds.yaml")
		require.NoError(t, os.WriteFile(p, []byte("feeds:\n  - name: x\n    url: u\n    format: json\n"), 0o644))
		_, err := LoadConfig(p)
		assert.Error(t, err)
	})

	t.Run("defaults include irena listing", func(t *testing.T) {
		t.Parallel()
		var irena *Feed
		for i, f := range DefaultConfig().Feeds {
			if f.Name == "irena" {
				irena = &DefaultConfig().Feeds[i]
			}
		}
		require.NotNil(t, irena)
		assert.Equal(t, FormatHTML, irena.Format)
		assert.Equal(t, "IRENA", irena.Source)
		assert.NotEmpty(t, irena.LinkPattern)
	})
}
