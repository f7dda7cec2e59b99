// Package snapshot はスナップショットJSONをデータディレクトリに保存・読み込みします。
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"alpha_sentiment/internal/feature/stocks/domain/entity"
	"alpha_sentiment/internal/feature/stocks/usecase"
	"alpha_sentiment/internal/shared/atomicfile"
	"alpha_sentiment/internal/shared/env"
)

const (
	// DefaultDataDir は既定のデータディレクトリです。
	DefaultDataDir = "data"
	// HotStocksFile は一覧スナップショットのファイル名です。
	HotStocksFile = "hot_stocks.json"

	stockPrefix = "stock_"
	jsonSuffix  = ".json"
)

// Store はディレクトリ上のスナップショットファイルを扱います。
type Store struct {
	dir string
}

var (
	_ usecase.SnapshotWriter = (*Store)(nil)
	_ usecase.SnapshotReader = (*Store)(nil)
	_ usecase.SnapshotIndex  = (*Store)(nil)
)

// LoadDataDir は環境変数からデータディレクトリを読み込みます。
func LoadDataDir() string {
	return env.String("ALPHA_SENTIMENT_DATA_DIR", DefaultDataDir)
}

// NewStore は dir を保存先とする Store を生成します。
func NewStore(dir string) *Store {
	if dir == "" {
		dir = DefaultDataDir
	}
	return &Store{dir: dir}
}

// Dir はデータディレクトリのパスを返します。
func (s *Store) Dir() string { return s.dir }

// EnsureDir はデータディレクトリを作成します。
func (s *Store) EnsureDir() error {
	return os.MkdirAll(s.dir, 0o755)
}

// WriteJSON は name（拡張子なし）のJSONファイルを原子的に書き込みます。
func (s *Store) WriteJSON(name string, v any) error {
	return atomicfile.WriteJSON(filepath.Join(s.dir, name+jsonSuffix), v)
}

// WriteHotStocks は hot_stocks.json を書き込みます。
func (s *Store) WriteHotStocks(snap entity.HotStocksSnapshot) error {
	return s.WriteJSON(strings.TrimSuffix(HotStocksFile, jsonSuffix), snap)
}

// WriteStock は stock_<code>.json を書き込みます。
func (s *Store) WriteStock(code string, snap entity.StockSnapshot) error {
	return s.WriteJSON(stockPrefix+code, snap)
}

// ReadHotStocks は hot_stocks.json を読み込みます。
func (s *Store) ReadHotStocks(_ context.Context) (entity.HotStocksSnapshot, error) {
	var snap entity.HotStocksSnapshot
	if err := s.read(HotStocksFile, &snap); err != nil {
		return entity.HotStocksSnapshot{}, err
	}
	return snap, nil
}

// ReadStock は stock_<code>.json を読み込みます。
func (s *Store) ReadStock(_ context.Context, code string) (entity.StockSnapshot, error) {
	if code == "" || strings.ContainsAny(code, `/\.`) {
		return entity.StockSnapshot{}, usecase.ErrSnapshotNotFound
	}
	var snap entity.StockSnapshot
	if err := s.read(stockPrefix+code+jsonSuffix, &snap); err != nil {
		return entity.StockSnapshot{}, err
	}
	return snap, nil
}

func (s *Store) read(name string, v any) error {
	err := atomicfile.ReadJSON(filepath.Join(s.dir, name), v)
	if errors.Is(err, fs.ErrNotExist) {
		return usecase.ErrSnapshotNotFound
	}
	return err
}

// LastUpdated は hot_stocks.json の updated_at を返します。
func (s *Store) LastUpdated() (string, error) {
	snap, err := s.ReadHotStocks(context.Background())
	if err != nil {
		return "", err
	}
	return snap.UpdatedAt, nil
}

// ListCodes は詳細ファイルが存在する銘柄コードを昇順で返します。
func (s *Store) ListCodes() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, stockPrefix+"*"+jsonSuffix))
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	codes := make([]string, 0, len(matches))
	for _, m := range matches {
		name := filepath.Base(m)
		codes = append(codes, strings.TrimSuffix(strings.TrimPrefix(name, stockPrefix), jsonSuffix))
	}
	sort.Strings(codes)
	return codes, nil
}

// DeleteAll はデータディレクトリ内の *.json をすべて削除し、削除件数を返します。
func (s *Store) DeleteAll() (int, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, "*"+jsonSuffix))
	if err != nil {
		return 0, fmt.Errorf("list snapshots: %w", err)
	}
	deleted := 0
	var errs []error
	for _, m := range matches {
		if err := os.Remove(m); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
			continue
		}
		deleted++
	}
	return deleted, errors.Join(errs...)
}
