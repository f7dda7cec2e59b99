package eastmoney

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"alpha_sentiment/internal/feature/stocks/domain/entity"
)

// DefaultKlineDays は取得する日足の既定本数です。
const DefaultKlineDays = 30

// GetKline は後復権（fqt=2）の日足を取得し、直近days本を古い順に返します。
func (c *Client) GetKline(ctx context.Context, code string, days int) ([]entity.KlineData, error) {
	if days <= 0 {
		days = DefaultKlineDays
	}
	clean := entity.CleanCode(code)

	q := url.Values{}
	q.Set("secid", entity.SecID(clean))
	q.Set("fields1", "f1,f2,f3,f4,f5,f6")
	q.Set("fields2", "f51,f52,f53,f54,f55,f56,f57")
	q.Set("klt", "101")
	q.Set("fqt", "2")
	q.Set("end", "20500101")
	q.Set("lmt", strconv.Itoa(days+10))

	var out []entity.KlineData
	err := c.withRetry(ctx, "get kline "+clean, func(ctx context.Context) error {
		body, err := c.get(ctx, c.cfg.KlineURL, q)
		if err != nil {
			return err
		}
		ks, err := parseKlines(body)
		if err != nil {
			return err
		}
		out = ks
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(out) > days {
		out = out[len(out)-days:]
	}
	return out, nil
}

// parseKlines は data.klines の "date,open,close,high,low,volume,amount" 行を解釈します。
// 銘柄が存在しない場合（dataがnull）は空スライスを返します。
func parseKlines(body []byte) ([]entity.KlineData, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("invalid kline response")
	}
	rows := gjson.GetBytes(body, "data.klines").Array()
	out := make([]entity.KlineData, 0, len(rows))
	for _, v := range rows {
		parts := strings.Split(strings.TrimSpace(v.String()), ",")
		if len(parts) < 7 {
			continue
		}
		out = append(out, entity.KlineData{
			Date:   parts[0],
			Open:   parseFloat(parts[1]),
			Close:  parseFloat(parts[2]),
			High:   parseFloat(parts[3]),
			Low:    parseFloat(parts[4]),
			Volume: int64(parseFloat(parts[5])),
			Amount: parseFloat(parts[6]),
		})
	}
	return out, nil
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}
