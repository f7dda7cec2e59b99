package eastmoney

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"alpha_sentiment/internal/feature/stocks/usecase"
	"alpha_sentiment/internal/shared/ratelimiter"
	"alpha_sentiment/internal/shared/retry"
)

// Client は東方財富と財新のHTTP APIを呼び出すMarketDataFetcher実装です。
type Client struct {
	cfg     Config
	client  *http.Client
	limiter ratelimiter.RateLimiterInterface
}

// ClientがMarketDataFetcherを実装していることをコンパイル時に検証します。
var _ usecase.MarketDataFetcher = (*Client)(nil)

// NewClient は指定した設定、HTTPクライアント、レートリミッターでClientを生成します。
// limiter がnilの場合は制限しません。
func NewClient(cfg Config, client *http.Client, limiter ratelimiter.RateLimiterInterface) *Client {
	if limiter == nil {
		limiter = ratelimiter.Noop{}
	}
	return &Client{cfg: cfg, client: client, limiter: limiter}
}

// withRetry はfnを線形バックオフで再試行します。
// 最終的な失敗はErrUpstreamでラップし、ctxの取り消しはそのまま返します。
func (c *Client) withRetry(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	err := retry.Do(ctx, retry.Policy{Attempts: c.cfg.MaxRetries, Delay: c.cfg.RetryDelay}, op, fn)
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %s: %v", usecase.ErrUpstream, op, err)
}

// get はクエリ付きGETを1回送信し、レスポンス本文を返します。
func (c *Client) get(ctx context.Context, base string, q url.Values) ([]byte, error) {
	u := base
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return c.send(ctx, http.MethodGet, u, nil)
}

// post はpayloadをJSONとしてPOSTします。
func (c *Client) post(ctx context.Context, u string, payload any) ([]byte, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return c.send(ctx, http.MethodPost, u, b)
}

func (c *Client) send(ctx context.Context, method, u string, body []byte) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, r)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Referer", "https://quote.eastmoney.com/")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("http %d", res.StatusCode)
	}
	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return data, nil
}
