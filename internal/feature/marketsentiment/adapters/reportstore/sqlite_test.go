package reportstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alpha_sentiment/internal/feature/marketsentiment/domain/entity"
	"alpha_sentiment/internal/feature/marketsentiment/usecase"
)

func openMemory(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStore_SaveAndGet(t *testing.T) {
	t.Parallel()
	s := openMemory(t)
	ctx := context.Background()

	r := entity.Report{
		Date:        "2025-03-10",
		TotalPosts:  3,
		Index:       61.5,
		MarketState: entity.StateSlightlyOptimistic,
		TopKeywords: []entity.KeywordCount{{Word: "大盘", Count: 2}},
	}
	require.NoError(t, s.Save(ctx, r))

	got, err := s.Get(ctx, "2025-03-10")
	require.NoError(t, err)
	assert.Equal(t, r.Index, got.Index)
	assert.Equal(t, r.TopKeywords, got.TopKeywords)

	r.Index = 40
	require.NoError(t, s.Save(ctx, r))
	got, err = s.Get(ctx, "2025-03-10")
	require.NoError(t, err)
	assert.InDelta(t, 40, got.Index, 1e-9)
}

func TestSQLiteStore_Get_NotFound(t *testing.T) {
	t.Parallel()
	s := openMemory(t)

	_, err := s.Get(context.Background(), "2025-01-01")
	assert.ErrorIs(t, err, usecase.ErrReportNotFound)
}

func TestSQLiteStore_Range(t *testing.T) {
	t.Parallel()
	s := openMemory(t)
	ctx := context.Background()

	for _, d := range []string{"2025-03-10", "2025-03-01", "2025-03-05", "2025-02-20"} {
		require.NoError(t, s.Save(ctx, entity.Report{Date: d}))
	}

	got, err := s.Range(ctx, "2025-03-01", "2025-03-10")
	require.NoError(t, err)

	dates := make([]string, 0, len(got))
	for _, r := range got {
		dates = append(dates, r.Date)
	}
	assert.Equal(t, []string{"2025-03-01", "2025-03-05", "2025-03-10"}, dates)

	empty, err := s.Range(ctx, "2024-01-01", "2024-01-31")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestOpen_FileDatabasePersists(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "reports.db")
	ctx := context.Background()

	s, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, entity.Report{Date: "2025-03-10", Index: 55}))
	require.NoError(t, s.Close())

	reopened, err := Open(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, "2025-03-10")
	require.NoError(t, err)
	assert.InDelta(t, 55, got.Index, 1e-9)
}
