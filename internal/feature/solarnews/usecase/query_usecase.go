package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"alpha_sentiment/internal/feature/solarnews/domain/entity"
)

// LastUpdateLayout は last_update の書式です。
const LastUpdateLayout = time.DateTime

// QueryUsecase はニュース一覧と統計を返します。
type QueryUsecase struct {
	source NewsSource
}

// NewQueryUsecase は QueryUsecase を生成します。
func NewQueryUsecase(source NewsSource) *QueryUsecase {
	return &QueryUsecase{source: source}
}

// ParseNewsType は区分文字列を検証します。
func ParseNewsType(s string) (entity.NewsType, error) {
	t := entity.NewsType(s)
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidNewsType, s)
	}
	return t, nil
}

// Query は条件に合うニュースを日付の新しい順で返します。
func (u *QueryUsecase) Query(ctx context.Context, t entity.NewsType, f entity.NewsFilter) (entity.QueryResult, error) {
	if !t.Valid() {
		return entity.QueryResult{}, ErrInvalidNewsType
	}
	match, err := newMatcher(t, f)
	if err != nil {
		return entity.QueryResult{}, err
	}

	items, last, err := u.source.Items(ctx, t)
	if err != nil {
		return entity.QueryResult{}, fmt.Errorf("load %s news: %w", t, err)
	}

	filtered := make([]entity.NewsItem, 0, len(items))
	for _, n := range items {
		if match(n) {
			filtered = append(filtered, n)
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return sortKey(t, filtered[i]) > sortKey(t, filtered[j])
	})

	return entity.QueryResult{
		Success:     true,
		Data:        filtered,
		Count:       len(filtered),
		TotalCount:  len(items),
		SourceStats: sourceStats(filtered),
		LastUpdate:  formatLastUpdate(last),
	}, nil
}

// Stats は全件の来源別件数を返します。
func (u *QueryUsecase) Stats(ctx context.Context, t entity.NewsType) (entity.StatsResult, error) {
	if !t.Valid() {
		return entity.StatsResult{}, ErrInvalidNewsType
	}
	items, last, err := u.source.Items(ctx, t)
	if err != nil {
		return entity.StatsResult{}, fmt.Errorf("load %s news: %w", t, err)
	}
	return entity.StatsResult{
		Success:     true,
		TotalCount:  len(items),
		SourceStats: sourceStats(items),
		LastUpdate:  formatLastUpdate(last),
	}, nil
}

// newMatcher は絞り込み条件を1件ずつ判定する関数にします。
// 日付条件は開始日と終了日の両方があるときだけ使います。
func newMatcher(t entity.NewsType, f entity.NewsFilter) (func(entity.NewsItem) bool, error) {
	start := strings.TrimSpace(f.StartDate)
	end := strings.TrimSpace(f.EndDate)
	useDates := start != "" && end != ""
	if useDates {
		for _, d := range []string{start, end} {
			if _, err := time.Parse(time.DateOnly, d); err != nil {
				return nil, fmt.Errorf("%w: %q", ErrInvalidDate, d)
			}
		}
	}
	keyword := strings.ToLower(strings.TrimSpace(f.Keyword))
	source := strings.TrimSpace(f.Source)

	return func(n entity.NewsItem) bool {
		if useDates && !inDateRange(t, n, start, end) {
			return false
		}
		if keyword != "" && !matchesKeyword(t, n, keyword) {
			return false
		}
		if source != "" && n.Source != source {
			return false
		}
		return true
	}, nil
}

func inDateRange(t entity.NewsType, n entity.NewsItem, start, end string) bool {
	if t == entity.Domestic {
		if _, err := time.Parse(time.DateOnly, n.Date); err != nil {
			return false
		}
		return n.Date >= start && n.Date <= end
	}

	raw := n.SortDate()
	// 日付の無い国際ニュースは絞り込み対象外として残す
	if raw == "" {
		return true
	}
	d, ok := entity.LeadingDate(raw)
	if !ok {
		return false
	}
	if _, err := time.Parse(time.DateOnly, d); err != nil {
		return false
	}
	return d >= start && d <= end
}

func matchesKeyword(t entity.NewsType, n entity.NewsItem, keyword string) bool {
	if t == entity.Domestic {
		return strings.Contains(strings.ToLower(n.Title), keyword)
	}
	title := n.TitleTranslated
	if title == "" {
		title = n.Title
	}
	return strings.Contains(strings.ToLower(title), keyword) ||
		strings.Contains(strings.ToLower(n.Summary), keyword)
}

func sortKey(t entity.NewsType, n entity.NewsItem) string {
	if t == entity.Domestic {
		return n.Date
	}
	return n.SortDate()
}

func sourceStats(items []entity.NewsItem) map[string]int {
	stats := make(map[string]int)
	for _, n := range items {
		stats[n.SourceName()]++
	}
	return stats
}

func formatLastUpdate(t *time.Time) *string {
	if t == nil || t.IsZero() {
		return nil
	}
	s := t.Format(LastUpdateLayout)
	return &s
}
