package filestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alpha_sentiment/internal/feature/marketsentiment/domain/entity"
	"alpha_sentiment/internal/shared/atomicfile"
)

func writeRaw(t *testing.T, dir, name, body string) {
	t.Helper()
	p := filepath.Join(dir, "raw", name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
}

func TestStore_LoadRawPosts(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	writeRaw(t, dir, "eastmoney_20250310.json",
		`{"source":"eastmoney","data":[{"title":"看好","content":"上涨","read_count":"1.5万","comment_count":3}]}`)
	writeRaw(t, dir, "xueqiu_20250310_am.json",
		`{"source":"xueqiu","data":[{"source":"wrong","title":"风险","read_count":null}]}`)
	writeRaw(t, dir, "weibo_20250310.json", `not json`)
	writeRaw(t, dir, "tieba_20250309.json", `{"source":"tieba","data":[{"title":"其他日"}]}`)

	s := NewStore(dir)
	posts, err := s.LoadRawPosts(context.Background(), time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, posts, 2)

	assert.Equal(t, "eastmoney", posts[0].Source)
	assert.Equal(t, entity.FlexCount("1.5万"), posts[0].ReadCount)
	assert.Equal(t, entity.FlexCount("3"), posts[0].CommentCount)
	assert.Equal(t, "xueqiu", posts[1].Source)
	assert.Equal(t, entity.FlexCount(""), posts[1].ReadCount)
}

func TestStore_LoadRawPosts_NoFiles(t *testing.T) {
	t.Parallel()
	s := NewStore(t.TempDir())

	posts, err := s.LoadRawPosts(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestStore_SaveProcessed(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	s := NewStore(dir)
	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.SaveProcessed(date, []entity.ProcessedPost{{ID: "eastmoney_0", Score: 0.5}}))

	path := filepath.Join(dir, "processed", "processed_20250310.json")
	assert.Equal(t, path, s.ProcessedPath(date))

	var got []entity.ProcessedPost
	require.NoError(t, atomicfile.ReadJSON(path, &got))
	require.Len(t, got, 1)
	assert.Equal(t, "eastmoney_0", got[0].ID)

	require.NoError(t, s.SaveProcessed(date, nil))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(raw))
}
