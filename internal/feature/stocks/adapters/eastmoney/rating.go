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

const (
	ratingReportName   = "RPT_DMSK_TS_STOCKNEW"
	ratingQuoteColumns = "f2~01~SECURITY_CODE~CLOSE_PRICE,f8~01~SECURITY_CODE~TURNOVERRATE,f3~01~SECURITY_CODE~CHANGE_RATE,f9~01~SECURITY_CODE~PE_DYNAMIC"
)

// FetchAllRatings は千股千評レポートを全ページ取得し、6桁コードをキーにして返します。
// 途中のページで失敗した場合は、それまでに取得した分とエラーを返します。
func (c *Client) FetchAllRatings(ctx context.Context) (map[string]entity.StockRating, error) {
	out := make(map[string]entity.StockRating)

	pages := 1
	for page := 1; page <= pages && page <= c.cfg.MaxRatingPages; page++ {
		q := url.Values{}
		q.Set("sortColumns", "SECURITY_CODE")
		q.Set("sortTypes", "1")
		q.Set("pageSize", strconv.Itoa(c.cfg.RatingPageSize))
		q.Set("pageNumber", strconv.Itoa(page))
		q.Set("reportName", ratingReportName)
		q.Set("quoteColumns", ratingQuoteColumns)
		q.Set("columns", "ALL")

		var body []byte
		err := c.withRetry(ctx, "fetch ratings page "+strconv.Itoa(page), func(ctx context.Context) error {
			b, err := c.get(ctx, c.cfg.RatingURL, q)
			if err != nil {
				return err
			}
			if !gjson.ValidBytes(b) {
				return errors.New("invalid rating response")
			}
			body = b
			return nil
		})
		if err != nil {
			return out, err
		}

		result := gjson.GetBytes(body, "result")
		if !result.Exists() || result.Type == gjson.Null {
			break
		}
		if p := int(result.Get("pages").Int()); p > 0 {
			pages = p
		}
		for _, v := range result.Get("data").Array() {
			code := strings.TrimSpace(v.Get("SECURITY_CODE").String())
			if code == "" {
				continue
			}
			out[code] = toRating(v)
		}
	}

	slog.Info("stock ratings fetched", "count", len(out))
	return out, nil
}

func toRating(v gjson.Result) entity.StockRating {
	return entity.StockRating{
		Score:            v.Get("TOTALSCORE").Float(),
		InstitutionRatio: v.Get("ORG_PARTICIPATE").Float(),
		AttentionIndex:   v.Get("FOCUS").Float(),
		Rank:             int(v.Get("RANK").Int()),
		RankChange:       int(v.Get("RANK_UP").Int()),
		MainCost:         v.Get("PRIME_COST").Float(),
		PERatio:          v.Get("PE_DYNAMIC").Float(),
		TurnoverRate:     v.Get("TURNOVERRATE").Float(),
	}
}
