// Package filestore は光伏ニュースのJSONファイルを読み書きします。
package filestore

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"alpha_sentiment/internal/feature/solarnews/domain/entity"
	"alpha_sentiment/internal/feature/solarnews/usecase"
	"alpha_sentiment/internal/shared/atomicfile"
	"alpha_sentiment/internal/shared/env"
)

const (
	// EnvDataDir はデータディレクトリの環境変数です。
	EnvDataDir = "SOLAR_DATA_DIR"
	// DefaultDataDir はデータディレクトリの既定値です。
	DefaultDataDir = "data/solar"

	fileDate = "20060102"
)

var patterns = map[entity.NewsType]string{
	entity.Domestic:      "combined_*.json",
	entity.International: "translator_*.json",
}

type loaded struct {
	items    []entity.NewsItem
	hash     string
	loadedAt time.Time
}

// Store は最新のニュースファイルをメモリに保持し、内容が変わったときだけ読み直します。
// 简报ファイルとクロール結果の書き込みも扱います。
type Store struct {
	dir string

	mu     sync.RWMutex
	byType map[entity.NewsType]*loaded

	summaryMu sync.Mutex
	now       func() time.Time
}

var (
	_ usecase.NewsSource        = (*Store)(nil)
	_ usecase.NewsWriter        = (*Store)(nil)
	_ usecase.SummaryRepository = (*Store)(nil)
)

// LoadDataDir は環境変数からデータディレクトリを読みます。
func LoadDataDir() string {
	return env.String(EnvDataDir, DefaultDataDir)
}

// NewStore は Store を生成します。
func NewStore(dir string) *Store {
	return &Store{dir: dir, byType: make(map[entity.NewsType]*loaded), now: time.Now}
}

// Dir はデータディレクトリを返します。
func (s *Store) Dir() string { return s.dir }

// Items は区分 t の最新ファイルの内容を返します。
// ファイルのMD5が前回と同じなら保持している内容をそのまま返します。
func (s *Store) Items(_ context.Context, t entity.NewsType) ([]entity.NewsItem, *time.Time, error) {
	pattern, ok := patterns[t]
	if !ok {
		return nil, nil, usecase.ErrInvalidNewsType
	}
	if err := s.reloadIfChanged(t, pattern); err != nil {
		slog.Warn("failed to reload news file", "type", t, "error", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	l := s.byType[t]
	if l == nil {
		return nil, nil, nil
	}
	at := l.loadedAt
	return l.items, &at, nil
}

func (s *Store) reloadIfChanged(t entity.NewsType, pattern string) error {
	path, err := s.latest(pattern)
	if err != nil || path == "" {
		return err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	sum := md5.Sum(b)
	hash := hex.EncodeToString(sum[:])

	s.mu.RLock()
	cur := s.byType[t]
	s.mu.RUnlock()
	if cur != nil && cur.hash == hash {
		return nil
	}

	items, err := decodeItems(t, b)
	if err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}

	s.mu.Lock()
	s.byType[t] = &loaded{items: items, hash: hash, loadedAt: s.now()}
	s.mu.Unlock()
	slog.Info("news file loaded", "type", t, "file", filepath.Base(path), "count", len(items))
	return nil
}

// decodeItems は国内なら配列、国際なら {news_list:[…]} か配列を受け付けます。
func decodeItems(t entity.NewsType, b []byte) ([]entity.NewsItem, error) {
	var items []entity.NewsItem
	if err := json.Unmarshal(b, &items); err == nil {
		return items, nil
	} else if t == entity.Domestic {
		return nil, err
	}
	var f entity.TranslatedFile
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, err
	}
	if f.NewsList == nil {
		return nil, errors.New("news_list is missing")
	}
	return f.NewsList, nil
}

// latest は pattern に合う最も新しい（mtimeが最大の）ファイルを返します。無ければ空文字です。
func (s *Store) latest(pattern string) (string, error) {
	files, err := filepath.Glob(filepath.Join(s.dir, pattern))
	if err != nil {
		return "", err
	}
	var (
		best    string
		bestMod time.Time
	)
	for _, f := range files {
		info, err := os.Stat(f)
		if err != nil {
			continue
		}
		if best == "" || info.ModTime().After(bestMod) {
			best, bestMod = f, info.ModTime()
		}
	}
	return best, nil
}

// WriteDomestic は combined_<YYYYMMDD>.json を書き込みます。
func (s *Store) WriteDomestic(date time.Time, items []entity.NewsItem) (string, error) {
	path := filepath.Join(s.dir, "combined_"+date.Format(fileDate)+".json")
	if items == nil {
		items = []entity.NewsItem{}
	}
	return path, atomicfile.WriteJSON(path, items)
}

// WriteInternational は translator_<YYYYMMDD>.json を書き込みます。
func (s *Store) WriteInternational(date time.Time, f entity.TranslatedFile) (string, error) {
	path := filepath.Join(s.dir, "translator_"+date.Format(fileDate)+".json")
	if f.NewsList == nil {
		f.NewsList = []entity.NewsItem{}
	}
	return path, atomicfile.WriteJSON(path, f)
}

func (s *Store) summaryPath(t entity.NewsType) string {
	return filepath.Join(s.dir, "summary_"+string(t)+".json")
}

// Summaries は summary_<type>.json を読みます。ファイルが無い、または壊れている場合は空です。
func (s *Store) Summaries(t entity.NewsType) ([]entity.Summary, error) {
	var list []entity.Summary
	err := atomicfile.ReadJSON(s.summaryPath(t), &list)
	if errors.Is(err, fs.ErrNotExist) {
		return []entity.Summary{}, nil
	}
	if err != nil {
		slog.Warn("summary file unreadable, treating as empty", "type", t, "error", err)
		return []entity.Summary{}, nil
	}
	return list, nil
}

// SaveSummary は同じ日付の記録を置き換えて先頭に追加し、最大30件で保存します。
func (s *Store) SaveSummary(t entity.NewsType, sum entity.Summary) error {
	s.summaryMu.Lock()
	defer s.summaryMu.Unlock()

	existing, err := s.Summaries(t)
	if err != nil {
		return err
	}
	return atomicfile.WriteJSON(s.summaryPath(t), usecase.MergeSummary(existing, sum, usecase.SummaryKeep))
}
