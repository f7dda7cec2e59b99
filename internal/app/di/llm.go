// Package di はアプリケーションのコンポーネントを組み立てるファクトリーを提供します。
package di

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/time/rate"

	"alpha_sentiment/internal/platform/llm"
	"alpha_sentiment/internal/platform/llm/gemini"
	"alpha_sentiment/internal/platform/llm/openai"
)

// 用途ごとの生成パラメーター
var (
	AnalyzerParams   = llm.Params{Temperature: 0.3, MaxTokens: 500}
	SummaryParams    = llm.Params{Temperature: 0.7, MaxTokens: 2000}
	TranslatorParams = llm.Params{Temperature: 0.1, MaxTokens: 300}
)

// ChatModel は各フィーチャーのChatModelポートを満たすLLMクライアントです。
type ChatModel interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// NewChatModel は LLM_PROVIDER に応じたクライアントを生成します。
// APIキーが無い場合は (nil, llm.ErrNotConfigured) を返します。
func NewChatModel(ctx context.Context, cfg llm.Config, limiter *rate.Limiter, params llm.Params) (ChatModel, error) {
	switch cfg.Provider {
	case llm.ProviderGemini:
		c, err := gemini.New(ctx, cfg, limiter, params)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		c, err := openai.New(ctx, cfg, limiter, params)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
}

// LLM は用途別のクライアントです。未設定の用途はnilです。
type LLM struct {
	Analyzer   ChatModel
	Summary    ChatModel
	Translator ChatModel
}

// NewLLM は環境変数の設定から共通のLimiterを持つ用途別クライアントを生成します。
// 失敗してもnilのまま返し、LLMを使う機能だけが無効になります。
func NewLLM(ctx context.Context) LLM {
	cfg := llm.LoadConfig()
	limiter := llm.NewLimiter(cfg.RPM)

	var out LLM
	for _, u := range []struct {
		name   string
		params llm.Params
		dst    *ChatModel
	}{
		{"analyzer", AnalyzerParams, &out.Analyzer},
		{"summary", SummaryParams, &out.Summary},
		{"translator", TranslatorParams, &out.Translator},
	} {
		m, err := NewChatModel(ctx, cfg, limiter, u.params)
		if err != nil {
			if errors.Is(err, llm.ErrNotConfigured) {
				slog.Warn("LLM is not configured, feature disabled", "use", u.name)
			} else {
				slog.Error("LLM init failed", "use", u.name, "error", err)
			}
			continue
		}
		*u.dst = m
	}
	slog.Info("LLM configured", "provider", cfg.Provider, "model", cfg.Model, "rpm", cfg.RPM)
	return out
}
