package ratelimiter

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// RateLimiterInterface は、上流APIへのリクエスト頻度を制限するインターフェースです。
type RateLimiterInterface interface {
	// Wait は呼び出し枠が空くまで待機します。ctxが先に終了した場合はctx.Err()を返します。
	Wait(ctx context.Context) error
}

// RateLimiter はinterval内の呼び出し回数をlimitに制限します。
// 複数のgoroutineから同時に呼び出されても安全です。待機中はロックを保持しません。
type RateLimiter struct {
	mu          sync.Mutex
	limit       int           // interval あたりの上限
	interval    time.Duration // どの単位でリセットするか
	count       int
	windowStart time.Time // 予約済みの枠では未来の時刻になる
	now         func() time.Time
	after       func(time.Duration) <-chan time.Time
}

// NewRateLimiter は新しいRateLimiterのインスタンスを生成します。
// limit が0以下の場合は制限なしとして扱います。
func NewRateLimiter(limit int, interval time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:       limit,
		interval:    interval,
		windowStart: time.Now(),
		now:         time.Now,
		after:       time.After,
	}
}

// Wait はレートリミットの上限に達しているかを確認し、必要であれば次の枠まで待機します。
func (rl *RateLimiter) Wait(ctx context.Context) error {
	if rl.limit <= 0 {
		return nil
	}

	wait := rl.reserve()
	if wait <= 0 {
		return nil
	}
	slog.Debug("rate limit reached, waiting", "limit", rl.limit, "wait", wait)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-rl.after(wait):
		return nil
	}
}

// reserve は呼び出し枠を1つ確保し、その枠が始まるまでの待ち時間を返します。
func (rl *RateLimiter) reserve() time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	// interval を過ぎたらカウントリセット
	if now.Sub(rl.windowStart) >= rl.interval {
		rl.count = 0
		rl.windowStart = now
	}

	rl.count++
	if rl.count <= rl.limit {
		return 0
	}
	// 上限を超えた呼び出しは次の枠の先頭を予約する
	rl.windowStart = rl.windowStart.Add(rl.interval)
	rl.count = 1
	return rl.windowStart.Sub(now)
}

// Noop は待機しないRateLimiterInterface実装です。テストや制限不要な呼び出し元で使います。
type Noop struct{}

// Wait は何もしません。
func (Noop) Wait(context.Context) error { return nil }
