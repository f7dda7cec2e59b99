// Package atomicfile はJSONスナップショットの原子的な書き込みと読み込みを提供します。
//
// 書き込みは同じディレクトリの一時ファイルに出力してからリネームするため、
// 読み手が書きかけのファイルを観測することはありません。
package atomicfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

const (
	// readAttempts はリネーム競合に備えた読み込みの試行回数です。
	readAttempts = 3
	// readRetryWait は読み込み再試行の間隔です。
	readRetryWait = 100 * time.Millisecond
)

// WriteJSON は v をインデント付きJSONとして path に原子的に書き込みます。
func WriteJSON(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	return WriteFile(path, buf.Bytes())
}

// WriteFile は data を path.tmp に書き込み、fsync後に path へリネームします。
// 失敗した場合は一時ファイルを削除します。
func WriteFile(path string, data []byte) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}

	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("open temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp)
		}
	}()

	if _, err = f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err = f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// ReadJSON は path のJSONを v にデコードします。
// 置き換え中の一時的な失敗に備えて数回再試行し、ファイルが存在しない場合は fs.ErrNotExist を返します。
func ReadJSON(path string, v any) error {
	var lastErr error
	for attempt := 0; attempt < readAttempts; attempt++ {
		b, err := os.ReadFile(path)
		if err == nil {
			if err = json.Unmarshal(b, v); err == nil {
				return nil
			}
		}
		if errors.Is(err, fs.ErrNotExist) {
			return err
		}
		lastErr = err
		if attempt < readAttempts-1 {
			time.Sleep(readRetryWait)
		}
	}
	return fmt.Errorf("read %s: %w", filepath.Base(path), lastErr)
}
