// Package llm はLLMクライアントの共通設定を提供します。
// 実装は openai（OpenAI互換API、DeepSeek等）と gemini サブパッケージにあります。
package llm

import (
	"errors"
	"os"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

const (
	// ProviderOpenAI はOpenAI互換APIを使うプロバイダー名です。
	ProviderOpenAI = "openai"
	// ProviderGemini はGoogle Geminiを使うプロバイダー名です。
	ProviderGemini = "gemini"

	DefaultBaseURL = "https://api.deepseek.com"
	DefaultModel   = "deepseek-chat"
	DefaultRPM     = 60
)

// ErrNotConfigured はAPIキーが設定されていないことを示します。
var ErrNotConfigured = errors.New("llm api key is not configured")

// Config はLLM接続設定です。
type Config struct {
	Provider string
	APIKey   string
	BaseURL  string
	Model    string
	RPM      int
	Timeout  time.Duration
}

// Params は呼び出しごとの生成パラメーターです。
type Params struct {
	Temperature float32
	MaxTokens   int
}

// LoadConfig は環境変数からLLM設定を読み込みます。
// LLM_* が無ければ DEEPSEEK_* を参照します。
func LoadConfig() Config {
	provider := os.Getenv("LLM_PROVIDER")
	if provider == "" {
		provider = ProviderOpenAI
	}

	apiKey := firstNonEmpty(os.Getenv("LLM_API_KEY"), os.Getenv("DEEPSEEK_API_KEY"))
	baseURL := firstNonEmpty(os.Getenv("LLM_BASE_URL"), os.Getenv("DEEPSEEK_BASE_URL"), DefaultBaseURL)
	model := firstNonEmpty(os.Getenv("LLM_MODEL"))
	if model == "" && provider == ProviderOpenAI {
		model = DefaultModel
	}

	rpm, err := strconv.Atoi(os.Getenv("LLM_RPM"))
	if err != nil || rpm <= 0 {
		rpm = DefaultRPM
	}

	return Config{
		Provider: provider,
		APIKey:   apiKey,
		BaseURL:  baseURL,
		Model:    model,
		RPM:      rpm,
		Timeout:  60 * time.Second,
	}
}

// NewLimiter はRPMから毎秒のトークン補充量を計算したLimiterを返します。
func NewLimiter(rpm int) *rate.Limiter {
	if rpm <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	burst := rpm / 10
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(float64(rpm)/60.0), burst)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
