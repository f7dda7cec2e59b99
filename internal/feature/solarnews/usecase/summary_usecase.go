package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"alpha_sentiment/internal/feature/solarnews/domain/entity"
)

const (
	summaryMaxItems  = 100
	summaryMaxTitles = 50
	// SummaryKeep は summary_<type>.json に残す履歴の件数です。
	SummaryKeep = 30
)

const summarySystemPrompt = "你是一位资深的光伏行业分析师，擅长从大量新闻中提取核心信息并生成简报。"

// SummaryUsecase は当日のニュースからAI简报を作ります。
type SummaryUsecase struct {
	source NewsSource
	repo   SummaryRepository
	model  ChatModel
	now    func() time.Time
}

// NewSummaryUsecase は SummaryUsecase を生成します。modelがnilの場合、生成はできず参照のみ可能です。
func NewSummaryUsecase(source NewsSource, repo SummaryRepository, model ChatModel) *SummaryUsecase {
	return &SummaryUsecase{source: source, repo: repo, model: model, now: time.Now}
}

// GenerateSummary は区分 t の简报を生成して保存します。
func (u *SummaryUsecase) GenerateSummary(ctx context.Context, t entity.NewsType) (entity.Summary, error) {
	if !t.Valid() {
		return entity.Summary{}, ErrInvalidNewsType
	}
	if u.model == nil {
		return entity.Summary{}, ErrSummarizerUnavailable
	}

	items, _, err := u.source.Items(ctx, t)
	if err != nil {
		return entity.Summary{}, fmt.Errorf("load %s news: %w", t, err)
	}
	if len(items) == 0 {
		return entity.Summary{}, ErrNoNews
	}

	now := u.now()
	titles, stats := collectTitles(t, items)
	text, err := u.model.Complete(ctx, summarySystemPrompt, BuildSummaryPrompt(t, now, titles, stats))
	if err != nil {
		return entity.Summary{}, fmt.Errorf("summarize %s news: %w", t, err)
	}

	s := entity.Summary{
		Date:           now.Format(time.DateOnly),
		GeneratedAt:    now.Format(time.DateTime),
		Summary:        strings.TrimSpace(text),
		NewsCount:      len(items),
		ProcessedCount: len(titles),
		SourceStats:    stats,
		NewsType:       t,
		Success:        true,
	}
	if err := u.repo.SaveSummary(t, s); err != nil {
		return s, fmt.Errorf("save %s summary: %w", t, err)
	}
	slog.Info("solar summary generated", "type", t, "news", s.NewsCount, "processed", s.ProcessedCount)
	return s, nil
}

// GetSummary は保存済みの简报履歴を返します。
func (u *SummaryUsecase) GetSummary(_ context.Context, t entity.NewsType) (entity.SummaryList, error) {
	if !t.Valid() {
		return entity.SummaryList{}, ErrInvalidNewsType
	}
	list, err := u.repo.Summaries(t)
	if err != nil {
		return entity.SummaryList{}, fmt.Errorf("load %s summaries: %w", t, err)
	}
	if list == nil {
		list = []entity.Summary{}
	}
	return entity.SummaryList{Success: true, Data: list}, nil
}

// collectTitles はプロンプト用の見出しと投稿元ごとの件数を集めます。国際ニュースは訳題を優先します。
func collectTitles(t entity.NewsType, items []entity.NewsItem) ([]string, map[string]int) {
	if len(items) > summaryMaxItems {
		items = items[:summaryMaxItems]
	}
	titles := make([]string, 0, len(items))
	stats := make(map[string]int)
	for _, n := range items {
		title := n.Title
		if t == entity.International {
			title = n.TitleTranslated
			if title == "" {
				title = n.TitleOriginal
			}
		}
		if title != "" {
			titles = append(titles, title)
		}
		stats[n.SourceName()]++
	}
	return titles, stats
}

// BuildSummaryPrompt は「今日光伏产业焦点」简报のユーザープロンプトを組み立てます。
func BuildSummaryPrompt(t entity.NewsType, now time.Time, titles []string, stats map[string]int) string {
	typeCN := "国内"
	if t == entity.International {
		typeCN = "国际"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "今天是%s，以下是今日收集的%s光伏行业新闻标题(%d条):\n\n", now.Format("2006年01月02日"), typeCN, len(titles))
	for i, title := range titles {
		if i >= summaryMaxTitles {
			break
		}
		fmt.Fprintf(&b, "%d. %s\n", i+1, title)
	}

	b.WriteString("\n数据来源统计:\n")
	sources := make([]string, 0, len(stats))
	for s := range stats {
		sources = append(sources, s)
	}
	sort.Strings(sources)
	for _, s := range sources {
		fmt.Fprintf(&b, "- %s: %d条\n", s, stats[s])
	}

	fmt.Fprintf(&b, `
请根据以上%s光伏行业新闻标题，生成"今日光伏产业焦点"简报。

要求：
1. 首先用一句话总结今日整体趋势
2. 提取3-5个主要热点话题
3. 每个话题用1句话精炼概括
4. 使用markdown格式，用 "### " 标记每个话题标题
5. 总字数控制在250字以内
6. 语言精炼专业

请直接输出简报内容，不要添加标题和额外说明。`, typeCN)
	return b.String()
}

// MergeSummary は同じ日付の記録を置き換えて先頭に追加し、keep件に切り詰めます。
func MergeSummary(existing []entity.Summary, s entity.Summary, keep int) []entity.Summary {
	out := make([]entity.Summary, 0, len(existing)+1)
	out = append(out, s)
	for _, e := range existing {
		if e.Date != s.Date {
			out = append(out, e)
		}
	}
	if keep > 0 && len(out) > keep {
		out = out[:keep]
	}
	return out
}
