package atomicfile

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

func TestWriteJSON_ThenReadJSON(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "sample.json")

	require.NoError(t, WriteJSON(path, sample{Name: "贵州茅台", Value: 42}))

	var got sample
	require.NoError(t, ReadJSON(path, &got))
	assert.Equal(t, sample{Name: "贵州茅台", Value: 42}, got)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "贵州茅台", "CJK must be written unescaped")
	assert.Contains(t, string(raw), "\n  \"name\"", "output must be indented")

	_, err = os.Stat(path + ".tmp")
	assert.ErrorIs(t, err, fs.ErrNotExist, "temp file must not be left behind")
}

func TestWriteJSON_ReplacesExisting(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "sample.json")
	require.NoError(t, WriteJSON(path, sample{Name: "old"}))
	require.NoError(t, WriteJSON(path, sample{Name: "new"}))

	var got sample
	require.NoError(t, ReadJSON(path, &got))
	assert.Equal(t, "new", got.Name)
}

func TestWriteJSON_EncodeErrorLeavesNoTemp(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.json")
	err := WriteJSON(path, map[string]any{"ch": make(chan int)})
	require.Error(t, err)

	_, statErr := os.Stat(path + ".tmp")
	assert.ErrorIs(t, statErr, fs.ErrNotExist)
	_, statErr = os.Stat(path)
	assert.ErrorIs(t, statErr, fs.ErrNotExist)
}

func TestReadJSON_Missing(t *testing.T) {
	t.Parallel()

	var got sample
	err := ReadJSON(filepath.Join(t.TempDir(), "missing.json"), &got)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestReadJSON_Corrupted(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "corrupted.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	var got sample
	err := ReadJSON(path, &got)
	require.Error(t, err)
	assert.NotErrorIs(t, err, fs.ErrNotExist)
}
