package eastmoney

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"alpha_sentiment/internal/feature/stocks/domain/entity"
)

// FetchAllNews は財新の全市場ニュースを1回で取得します。
// 失敗時は空スライスとエラーを返すので、呼び出し元はニュース無しで処理を続けられます。
func (c *Client) FetchAllNews(ctx context.Context) ([]entity.RawNews, error) {
	q := url.Values{}
	q.Set("pageNum", "1")
	q.Set("pageSize", strconv.Itoa(c.cfg.NewsPageSize))
	q.Set("showLabels", "true")

	var out []entity.RawNews
	err := c.withRetry(ctx, "fetch all news", func(ctx context.Context) error {
		body, err := c.get(ctx, c.cfg.NewsURL, q)
		if err != nil {
			return err
		}
		items, err := parseNews(body)
		if err != nil {
			return err
		}
		out = items
		return nil
	})
	if err != nil {
		return []entity.RawNews{}, err
	}

	slog.Info("market news fetched", "count", len(out))
	return out, nil
}

func parseNews(body []byte) ([]entity.RawNews, error) {
	if !gjson.ValidBytes(body) {
		return nil, errors.New("invalid news response")
	}
	list := gjson.GetBytes(body, "data.data")
	if !list.IsArray() {
		list = gjson.GetBytes(body, "data")
	}
	if !list.IsArray() {
		return nil, errors.New("news response has no data list")
	}

	arr := list.Array()
	out := make([]entity.RawNews, 0, len(arr))
	for _, v := range arr {
		pub := v.Get("pubTime").String()
		if pub == "" {
			pub = v.Get("pub_time").String()
		}
		out = append(out, entity.RawNews{
			Tag:     strings.TrimSpace(v.Get("tag").String()),
			Summary: strings.TrimSpace(v.Get("summary").String()),
			PubTime: pub,
			URL:     v.Get("url").String(),
		})
	}
	return out, nil
}
