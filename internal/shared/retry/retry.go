// Package retry は線形バックオフ付きの再試行ヘルパーを提供します。
package retry

import (
	"context"
	"log/slog"
	"time"
)

// Policy は再試行の回数と基準待機時間を表します。
// attempt 回目（0始まり）の失敗後は Delay*(attempt+1) 待機します。
type Policy struct {
	Attempts int
	Delay    time.Duration
}

// Backoff は attempt 回目の失敗後に待機する時間を返します。
func (p Policy) Backoff(attempt int) time.Duration {
	return p.Delay * time.Duration(attempt+1)
}

// Do は fn が成功するかAttempts回に達するまで呼び出し、最後のエラーを返します。
// 待機中にctxがキャンセルされた場合はctx.Err()を返します。
func Do(ctx context.Context, p Policy, op string, fn func(ctx context.Context) error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err
		if attempt == attempts-1 {
			break
		}

		wait := p.Backoff(attempt)
		slog.Warn("operation failed, retrying",
			"op", op, "attempt", attempt+1, "max", attempts, "wait", wait, "error", lastErr)

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
	return lastErr
}
