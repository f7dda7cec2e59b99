// Package openai はeinoのOpenAI互換ChatModelを使ったLLMクライアントです。
// DeepSeekなどOpenAI互換のエンドポイントにも接続できます。
package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	einoopenai "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"golang.org/x/time/rate"

	"alpha_sentiment/internal/platform/llm"
)

const (
	defaultMaxRetries = 3
	defaultBaseDelay  = 2 * time.Second
)

// Client はsystem/userプロンプトを送り、応答本文を返します。
// レート制限（429）のみ指数バックオフで再試行します。
type Client struct {
	cm         model.BaseChatModel
	limiter    *rate.Limiter
	params     llm.Params
	timeout    time.Duration
	maxRetries int
	baseDelay  time.Duration
}

// New はConfigからeinoのChatModelを生成してClientを返します。
func New(ctx context.Context, cfg llm.Config, limiter *rate.Limiter, params llm.Params) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, llm.ErrNotConfigured
	}
	cm, err := einoopenai.NewChatModel(ctx, &einoopenai.ChatModelConfig{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM init failed: %w", err)
	}
	c := NewWithModel(cm, limiter, params)
	c.timeout = cfg.Timeout
	return c, nil
}

// NewWithModel は任意のChatModelをラップします。limiterがnilなら制限しません。
func NewWithModel(cm model.BaseChatModel, limiter *rate.Limiter, params llm.Params) *Client {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	return &Client{
		cm:         cm,
		limiter:    limiter,
		params:     params,
		maxRetries: defaultMaxRetries,
		baseDelay:  defaultBaseDelay,
	}
}

// Complete はsystemとuserのメッセージで1回の補完を行い、前後の空白を除いた本文を返します。
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	messages := []*schema.Message{
		{Role: schema.System, Content: system},
		{Role: schema.User, Content: user},
	}
	var opts []model.Option
	if c.params.Temperature > 0 {
		opts = append(opts, model.WithTemperature(c.params.Temperature))
	}
	if c.params.MaxTokens > 0 {
		opts = append(opts, model.WithMaxTokens(c.params.MaxTokens))
	}

	var lastErr error
	for i := 0; i <= c.maxRetries; i++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}

		resp, err := c.cm.Generate(ctx, messages, opts...)
		if err == nil {
			if resp == nil {
				return "", errors.New("llm returned empty message")
			}
			return strings.TrimSpace(resp.Content), nil
		}

		lastErr = err
		if !isRateLimited(err) || i == c.maxRetries {
			break
		}
		wait := c.baseDelay * time.Duration(1<<i)
		slog.Warn("llm rate limited, backing off", "attempt", i+1, "wait", wait)
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(wait):
		}
	}
	return "", fmt.Errorf("llm generate: %w", lastErr)
}

func isRateLimited(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") || strings.Contains(msg, "too many requests")
}
