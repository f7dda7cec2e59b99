package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"alpha_sentiment/internal/feature/stocks/domain/entity"
	"alpha_sentiment/internal/feature/stocks/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_HotStocksRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewStore(t.TempDir())

	_, err := store.ReadHotStocks(ctx)
	require.ErrorIs(t, err, usecase.ErrSnapshotNotFound)

	score := 70
	snap := entity.HotStocksSnapshot{
		UpdatedAt:   "2025-01-02T15:40:00+08:00",
		TotalStocks: 1,
		Stocks:      []entity.EnrichedStock{{Code: "600519", Name: "贵州茅台", Tags: []string{}, SentimentScore: &score}},
	}
	require.NoError(t, store.WriteHotStocks(snap))

	got, err := store.ReadHotStocks(ctx)
	require.NoError(t, err)
	assert.Equal(t, snap, got)

	raw, err := os.ReadFile(filepath.Join(store.Dir(), HotStocksFile))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "贵州茅台", "CJK is written unescaped")
	assert.Contains(t, string(raw), "\n  \"updated_at\"", "two-space indentation")

	updated, err := store.LastUpdated()
	require.NoError(t, err)
	assert.Equal(t, "2025-01-02T15:40:00+08:00", updated)
}

func TestStore_StockFiles(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewStore(t.TempDir())

	for _, code := range []string{"600519", "000001"} {
		require.NoError(t, store.WriteStock(code, entity.StockSnapshot{Detail: entity.StockDetail{Code: code}}))
	}
	require.NoError(t, store.WriteHotStocks(entity.HotStocksSnapshot{}))

	got, err := store.ReadStock(ctx, "600519")
	require.NoError(t, err)
	assert.Equal(t, "600519", got.Detail.Code)

	_, err = store.ReadStock(ctx, "300750")
	assert.ErrorIs(t, err, usecase.ErrSnapshotNotFound)
	_, err = store.ReadStock(ctx, "../hot_stocks")
	assert.ErrorIs(t, err, usecase.ErrSnapshotNotFound)

	codes, err := store.ListCodes()
	require.NoError(t, err)
	assert.Equal(t, []string{"000001", "600519"}, codes)

	entries, err := os.ReadDir(store.Dir())
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasSuffix(e.Name(), ".tmp"), "no temp files remain")
	}

	n, err := store.DeleteAll()
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	codes, err = store.ListCodes()
	require.NoError(t, err)
	assert.Empty(t, codes)
}

func TestStore_CorruptedFileIsAnError(t *testing.T) {
	t.Parallel()
	store := NewStore(t.TempDir())
	require.NoError(t, os.WriteFile(filepath.Join(store.Dir(), HotStocksFile), []byte("{broken"), 0o644))

	_, err := store.ReadHotStocks(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, usecase.ErrSnapshotNotFound)
}
