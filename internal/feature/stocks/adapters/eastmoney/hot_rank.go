package eastmoney

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"alpha_sentiment/internal/feature/stocks/domain/entity"
)

// 人気ランキングAPIが要求する固定パラメーター
const (
	hotRankAppID    = "appId01"
	hotRankGlobalID = "786e4c21-70dc-435a-93bb-38"
	quoteUT         = "f057cbcbce2a86e2866ab8877db1d059"
)

var errEmptyRank = errors.New("empty hot rank list")

// GetHotStocks は人気ランキング上位limit件を現在値付きで返します。
// Heatはランキング内の1始まりの順位です。空の結果は失敗として再試行します。
func (c *Client) GetHotStocks(ctx context.Context, limit int) ([]entity.HotStock, error) {
	if limit <= 0 {
		limit = 20
	}

	var stocks []entity.HotStock
	err := c.withRetry(ctx, "get hot stocks", func(ctx context.Context) error {
		codes, err := c.fetchRank(ctx, limit)
		if err != nil {
			return err
		}
		quotes, err := c.fetchQuotes(ctx, codes)
		if err != nil {
			return err
		}

		out := make([]entity.HotStock, 0, len(codes))
		for _, code := range codes {
			q, ok := quotes[code]
			if !ok {
				q = quote{code: code}
			}
			out = append(out, entity.NewHotStock(code, q.name, q.price, q.change, len(out)+1))
		}
		stocks = out
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("hot stocks fetched", "count", len(stocks))
	return stocks, nil
}

// VerifyDataSource は人気ランキングAPIに到達できるかを確認します。
func (c *Client) VerifyDataSource(ctx context.Context) bool {
	var ok bool
	err := c.withRetry(ctx, "verify data source", func(ctx context.Context) error {
		codes, err := c.fetchRank(ctx, 1)
		if err != nil {
			return err
		}
		ok = len(codes) > 0
		return nil
	})
	if err != nil {
		slog.Error("data source verification failed", "error", err)
		return false
	}
	return ok
}

// fetchRank はランキングから6桁コードを順位順に返します。
func (c *Client) fetchRank(ctx context.Context, limit int) ([]string, error) {
	body, err := c.post(ctx, c.cfg.HotRankURL, map[string]any{
		"appId":      hotRankAppID,
		"globalId":   hotRankGlobalID,
		"marketType": "",
		"pageNo":     1,
		"pageSize":   limit,
	})
	if err != nil {
		return nil, err
	}

	data := gjson.GetBytes(body, "data")
	if !data.IsArray() {
		return nil, errEmptyRank
	}
	codes := make([]string, 0, limit)
	for _, v := range data.Array() {
		sc := strings.TrimSpace(v.Get("sc").String())
		if sc == "" {
			continue
		}
		codes = append(codes, entity.CleanCode(sc))
		if len(codes) >= limit {
			break
		}
	}
	if len(codes) == 0 {
		return nil, errEmptyRank
	}
	return codes, nil
}

type quote struct {
	code   string
	name   string
	price  float64
	change float64
}

// fetchQuotes はulistで現在値と騰落率を取得し、コードをキーにして返します。
func (c *Client) fetchQuotes(ctx context.Context, codes []string) (map[string]quote, error) {
	secids := make([]string, 0, len(codes))
	for _, code := range codes {
		secids = append(secids, entity.SecID(code))
	}

	q := url.Values{}
	q.Set("ut", quoteUT)
	q.Set("fltt", "2")
	q.Set("invt", "2")
	q.Set("fields", "f12,f14,f2,f3")
	q.Set("secids", strings.Join(secids, ","))

	body, err := c.get(ctx, c.cfg.QuoteURL, q)
	if err != nil {
		return nil, err
	}

	out := make(map[string]quote, len(codes))
	for _, v := range gjson.GetBytes(body, "data.diff").Array() {
		code := strings.TrimSpace(v.Get("f12").String())
		if code == "" {
			continue
		}
		out[code] = quote{
			code:   code,
			name:   strings.TrimSpace(v.Get("f14").String()),
			price:  v.Get("f2").Float(),
			change: v.Get("f3").Float(),
		}
	}
	return out, nil
}
