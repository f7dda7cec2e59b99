package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"time"

	"alpha_sentiment/internal/feature/solarnews/domain/entity"
)

// DefaultCrawlTimeout はクローラー1つあたりの制限時間です。
const DefaultCrawlTimeout = 10 * time.Minute

var spaces = regexp.MustCompile(`\s+`)

// CrawlUsecase は全クローラーを順番に実行し、結果をファイルにまとめます。
type CrawlUsecase struct {
	crawlers   []Crawler
	translator TitleTranslator
	writer     NewsWriter
	timeout    time.Duration
	now        func() time.Time
}

// NewCrawlUsecase は CrawlUsecase を生成します。timeoutが0以下なら既定値です。
func NewCrawlUsecase(crawlers []Crawler, translator TitleTranslator, writer NewsWriter, timeout time.Duration) *CrawlUsecase {
	if timeout <= 0 {
		timeout = DefaultCrawlTimeout
	}
	return &CrawlUsecase{crawlers: crawlers, translator: translator, writer: writer, timeout: timeout, now: time.Now}
}

// CrawlAll は各クローラーを制限時間付きで実行します。
// 失敗したクローラーは結果に記録して次へ進みます。
func (u *CrawlUsecase) CrawlAll(ctx context.Context) (entity.CrawlReport, error) {
	report := entity.CrawlReport{
		Results:        make(map[string]entity.CrawlResult, len(u.crawlers)),
		FailedCrawlers: []string{},
	}
	var domestic, international []entity.NewsItem
	byKind := make(map[entity.NewsType][]string)

	for _, c := range u.crawlers {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		items, err := u.runOne(ctx, c)
		if err != nil {
			slog.Warn("crawler failed", "crawler", c.Name(), "error", err)
			report.Results[c.Name()] = entity.CrawlResult{Error: err.Error()}
			report.FailedCrawlers = append(report.FailedCrawlers, c.Name())
			continue
		}
		slog.Info("crawler finished", "crawler", c.Name(), "count", len(items))
		report.Results[c.Name()] = entity.CrawlResult{Success: true, Count: len(items)}
		report.TotalSuccess++
		report.TotalCount += len(items)
		byKind[c.Kind()] = append(byKind[c.Kind()], c.Name())

		if c.Kind() == entity.International {
			international = append(international, items...)
		} else {
			domestic = append(domestic, items...)
		}
	}

	now := u.now()
	if len(domestic) > 0 {
		path, err := u.writer.WriteDomestic(now, DedupeDomestic(domestic))
		if err != nil {
			return report, fmt.Errorf("write domestic news: %w", err)
		}
		u.attachFile(&report, byKind[entity.Domestic], path)
	}
	if len(international) > 0 {
		path, err := u.writer.WriteInternational(now, u.translate(ctx, now, international))
		if err != nil {
			return report, fmt.Errorf("write international news: %w", err)
		}
		u.attachFile(&report, byKind[entity.International], path)
	}
	return report, nil
}

func (u *CrawlUsecase) runOne(ctx context.Context, c Crawler) ([]entity.NewsItem, error) {
	cctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()
	return c.Crawl(cctx)
}

func (u *CrawlUsecase) attachFile(report *entity.CrawlReport, names []string, path string) {
	for _, name := range names {
		r := report.Results[name]
		r.File = path
		report.Results[name] = r
	}
}

// translate は国際ニュースのタイトルを翻訳して translator ファイルの形にします。
func (u *CrawlUsecase) translate(ctx context.Context, now time.Time, items []entity.NewsItem) entity.TranslatedFile {
	out := make([]entity.NewsItem, 0, len(items))
	sources := make(map[string]int)
	for _, n := range items {
		original := n.TitleOriginal
		if original == "" {
			original = n.Title
		}
		translated := original
		if u.translator != nil {
			translated = u.translator.Translate(ctx, original)
		}
		out = append(out, entity.NewsItem{
			TitleOriginal:   original,
			TitleTranslated: translated,
			Link:            n.Link,
			PublishDate:     n.SortDate(),
			Source:          n.Source,
			Summary:         n.Summary,
			ContentType:     n.ContentType,
		})
		sources[n.SourceName()]++
	}
	return entity.TranslatedFile{
		MergeTime: now.Format(time.DateTime),
		Total:     len(out),
		Sources:   sources,
		NewsList:  out,
	}
}

// DedupeDomestic は空白を正規化したタイトルで重複を除き、日付の新しい順に並べます。
func DedupeDomestic(items []entity.NewsItem) []entity.NewsItem {
	seen := make(map[string]struct{}, len(items))
	out := make([]entity.NewsItem, 0, len(items))
	for _, n := range items {
		title := strings.TrimSpace(spaces.ReplaceAllString(n.Title, " "))
		if title == "" {
			continue
		}
		if _, dup := seen[title]; dup {
			continue
		}
		seen[title] = struct{}{}
		n.Title = title
		out = append(out, n)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out
}
