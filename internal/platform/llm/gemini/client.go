// Package gemini はGoogle Gemini APIを使用したLLMクライアントを提供します。
package gemini

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"alpha_sentiment/internal/platform/llm"
)

const (
	// DefaultModel はGemini APIのデフォルトモデルです。
	DefaultModel = "gemini-2.5-flash"
)

// Client はGeminiでsystem/userプロンプトの補完を行います。
type Client struct {
	client  *genai.Client
	model   string
	limiter *rate.Limiter
	params  llm.Params
}

// New はGeminiクライアントを生成します。
// APIKeyが空の場合はADC（GOOGLE_GENAI_USE_VERTEXAI, GOOGLE_CLOUD_PROJECT, GOOGLE_CLOUD_LOCATION）を使用します。
func New(ctx context.Context, cfg llm.Config, limiter *rate.Limiter, params llm.Params) (*Client, error) {
	var cc *genai.ClientConfig
	if cfg.APIKey != "" {
		cc = &genai.ClientConfig{APIKey: cfg.APIKey, Backend: genai.BackendGeminiAPI}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	return &Client{client: client, model: model, limiter: limiter, params: params}, nil
}

// Complete はsystemをシステム指示として渡し、生成されたテキストを返します。
func (g *Client) Complete(ctx context.Context, system, user string) (string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", err
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(user), generateConfig(system, g.params))
	if err != nil {
		return "", fmt.Errorf("gemini API request failed: %w", err)
	}

	return strings.TrimSpace(resp.Text()), nil
}

func generateConfig(system string, p llm.Params) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}
	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	if p.Temperature > 0 {
		cfg.Temperature = genai.Ptr(p.Temperature)
	}
	if p.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(p.MaxTokens)
	}
	return cfg
}
