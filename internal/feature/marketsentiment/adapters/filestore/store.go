// Package filestore は生投稿ファイルの読み込みと処理済み投稿の保存を行います。
package filestore

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"alpha_sentiment/internal/feature/marketsentiment/domain/entity"
	"alpha_sentiment/internal/feature/marketsentiment/usecase"
	"alpha_sentiment/internal/shared/atomicfile"
	"alpha_sentiment/internal/shared/env"
)

const (
	// EnvDataDir はデータディレクトリを指定する環境変数です。
	EnvDataDir = "SENTIMENT_DATA_DIR"
	// DefaultDataDir はデータディレクトリの既定値です。
	DefaultDataDir = "data/sentiment"

	rawDir       = "raw"
	processedDir = "processed"
	fileDate     = "20060102"
)

// rawFile は収集器が出力する1ファイル分の形式です。
type rawFile struct {
	Source string           `json:"source"`
	Data   []entity.RawPost `json:"data"`
}

// Store は <dir>/raw と <dir>/processed を扱います。
type Store struct {
	dir string
}

var (
	_ usecase.RawPostSource   = (*Store)(nil)
	_ usecase.ProcessedWriter = (*Store)(nil)
)

// LoadDataDir は環境変数からデータディレクトリを読みます。
func LoadDataDir() string {
	return env.String(EnvDataDir, DefaultDataDir)
}

// NewStore は Store を生成します。
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir はデータディレクトリです。
func (s *Store) Dir() string { return s.dir }

// LoadRawPosts は raw/*<YYYYMMDD>*.json をファイル名順に読み込みます。
// 各投稿のsourceはファイルのsourceで上書きし、読めないファイルは飛ばします。
func (s *Store) LoadRawPosts(ctx context.Context, date time.Time) ([]entity.RawPost, error) {
	pattern := filepath.Join(s.dir, rawDir, "*"+date.Format(fileDate)+"*.json")
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("glob raw files: %w", err)
	}
	sort.Strings(files)

	var posts []entity.RawPost
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		b, err := os.ReadFile(f)
		if err != nil {
			slog.Warn("skip unreadable raw file", "file", f, "error", err)
			continue
		}
		var rf rawFile
		if err := json.Unmarshal(b, &rf); err != nil {
			slog.Warn("skip malformed raw file", "file", f, "error", err)
			continue
		}
		for _, p := range rf.Data {
			if rf.Source != "" {
				p.Source = rf.Source
			}
			posts = append(posts, p)
		}
		slog.Debug("raw file loaded", "file", filepath.Base(f), "posts", len(rf.Data))
	}
	return posts, nil
}

// SaveProcessed は processed/processed_<YYYYMMDD>.json に原子的に書き込みます。
func (s *Store) SaveProcessed(date time.Time, posts []entity.ProcessedPost) error {
	path := s.ProcessedPath(date)
	if posts == nil {
		posts = []entity.ProcessedPost{}
	}
	return atomicfile.WriteJSON(path, posts)
}

// ProcessedPath は処理済みファイルのパスです。
func (s *Store) ProcessedPath(date time.Time) string {
	return filepath.Join(s.dir, processedDir, "processed_"+date.Format(fileDate)+".json")
}
