// Package translator はニュースタイトルをLLMで簡体字中国語に翻訳します。
package translator

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"alpha_sentiment/internal/feature/solarnews/usecase"
)

// CacheTTL は翻訳キャッシュの保持期間です。
const CacheTTL = 30 * 24 * time.Hour

const systemPrompt = "你是专业的新能源行业翻译。请把用户给出的新闻标题翻译成简体中文，只输出译文，不要添加解释或引号。"

// Translator は翻訳結果を本文のMD5でキャッシュします。
// Redisが無い場合はプロセス内のmapに保持します。
type Translator struct {
	model usecase.ChatModel
	rdb   *redis.Client

	mu    sync.RWMutex
	local map[string]string
}

var _ usecase.TitleTranslator = (*Translator)(nil)

// New は Translator を生成します。model、rdbともにnilを許容します。
func New(model usecase.ChatModel, rdb *redis.Client) *Translator {
	return &Translator{model: model, rdb: rdb, local: make(map[string]string)}
}

// CacheKey は translation:<md5> 形式のキーです。
func CacheKey(text string) string {
	sum := md5.Sum([]byte(text))
	return "translation:" + hex.EncodeToString(sum[:])
}

// Translate はtextを翻訳します。LLMが無い、または失敗した場合は原文を返します。
func (t *Translator) Translate(ctx context.Context, text string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	key := CacheKey(text)
	if cached, ok := t.lookup(ctx, key); ok {
		return cached
	}
	if t.model == nil {
		return text
	}

	out, err := t.model.Complete(ctx, systemPrompt, text)
	out = strings.TrimSpace(out)
	if err != nil || out == "" {
		slog.Warn("translation failed, keeping original", "text", text, "error", err)
		return text
	}
	t.store(ctx, key, out)
	return out
}

func (t *Translator) lookup(ctx context.Context, key string) (string, bool) {
	if t.rdb == nil {
		t.mu.RLock()
		defer t.mu.RUnlock()
		v, ok := t.local[key]
		return v, ok
	}
	v, err := t.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false
	}
	if err != nil {
		slog.Warn("translation cache get failed", "key", key, "error", err)
		return "", false
	}
	return v, true
}

func (t *Translator) store(ctx context.Context, key, value string) {
	if t.rdb == nil {
		t.mu.Lock()
		t.local[key] = value
		t.mu.Unlock()
		return
	}
	if err := t.rdb.Set(ctx, key, value, CacheTTL).Err(); err != nil {
		slog.Warn("translation cache set failed", "key", key, "error", err)
	}
}
