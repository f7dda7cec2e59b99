// Package cache はリポジトリインターフェースのキャッシュ実装を提供します。
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"alpha_sentiment/internal/feature/stocks/domain/entity"
	"alpha_sentiment/internal/feature/stocks/usecase"
)

// CachingSnapshotReader は SnapshotReader をRedisキャッシュで装飾します。
// 元のリーダーを変更せずにキャッシュを追加するデコレーターパターンです。
type CachingSnapshotReader struct {
	inner     usecase.SnapshotReader
	rdb       *redis.Client
	ttl       func() time.Duration
	namespace string
}

var (
	_ usecase.SnapshotReader = (*CachingSnapshotReader)(nil)
	_ usecase.SnapshotCache  = (*CachingSnapshotReader)(nil)
)

// NewCachingSnapshotReader は SnapshotReader をRedisキャッシュで装飾します。
// ttlがnilの場合は5分、namespaceが空の場合は "snapshots" を使います。
func NewCachingSnapshotReader(rdb *redis.Client, ttl func() time.Duration, inner usecase.SnapshotReader, namespace string) *CachingSnapshotReader {
	if ttl == nil {
		ttl = func() time.Duration { return 5 * time.Minute }
	}
	if namespace == "" {
		namespace = "snapshots"
	}
	return &CachingSnapshotReader{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// ReadHotStocks は一覧スナップショットをキャッシュ優先で返します。
func (c *CachingSnapshotReader) ReadHotStocks(ctx context.Context) (entity.HotStocksSnapshot, error) {
	return readThrough(ctx, c, c.namespace+":hot", func() (entity.HotStocksSnapshot, error) {
		return c.inner.ReadHotStocks(ctx)
	})
}

// ReadStock は銘柄詳細をキャッシュ優先で返します。
func (c *CachingSnapshotReader) ReadStock(ctx context.Context, code string) (entity.StockSnapshot, error) {
	key := fmt.Sprintf("%s:stock:%s", c.namespace, safe(code))
	return readThrough(ctx, c, key, func() (entity.StockSnapshot, error) {
		return c.inner.ReadStock(ctx, code)
	})
}

// Invalidate は名前空間内のキャッシュをすべて削除します。
func (c *CachingSnapshotReader) Invalidate(ctx context.Context) error {
	if c.rdb == nil {
		return nil
	}
	return c.deleteByPattern(ctx, c.namespace+":*")
}

// readThrough はキャッシュを確認し、無ければloadの結果を保存して返します。
func readThrough[T any](ctx context.Context, c *CachingSnapshotReader, key string, load func() (T, error)) (T, error) {
	// Redisが無ければキャッシュをバイパス
	if c.rdb == nil {
		return load()
	}

	// 1) キャッシュを確認
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out T
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		// 壊れたエントリは削除
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) ファイルから読み込み
	out, err := load()
	if err != nil {
		var zero T
		return zero, err
	}

	// 3) キャッシュに保存（ベストエフォート）
	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl()).Err()
	}
	return out, nil
}

// deleteByPattern はSCANでパターンに一致するキーを削除します。
func (c *CachingSnapshotReader) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	return nil
}

// safe はRedisキーで問題になる文字を置き換えます。
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	s = strings.ReplaceAll(s, "*", "_")
	return s
}
