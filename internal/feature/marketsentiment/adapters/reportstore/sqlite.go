// Package reportstore は日次レポートをSQLiteに保存します。
package reportstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"alpha_sentiment/internal/feature/marketsentiment/domain/entity"
	"alpha_sentiment/internal/feature/marketsentiment/usecase"
	"alpha_sentiment/internal/shared/env"
)

const (
	// EnvDBPath はレポートDBのパスを指定する環境変数です。
	EnvDBPath = "SENTIMENT_DB_PATH"
	// DefaultDBPath はレポートDBの既定パスです。
	DefaultDBPath = "data/sentiment/sentiment.db"
)

const schema = `
	CREATE TABLE IF NOT EXISTS sentiment_reports (
		date TEXT PRIMARY KEY,
		payload TEXT NOT NULL,
		idx REAL NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
`

// SQLiteStore は sentiment_reports テーブルを扱います。
type SQLiteStore struct {
	db *sql.DB
}

var _ usecase.ReportRepository = (*SQLiteStore)(nil)

// LoadDBPath は環境変数からDBパスを読みます。
func LoadDBPath() string {
	return env.String(EnvDBPath, DefaultDBPath)
}

// Open はDBを開いてスキーマを作成します。dsnには ":memory:" も指定できます。
func Open(ctx context.Context, dsn string) (*SQLiteStore, error) {
	if dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// :memory: は接続ごとに別DBになる
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode = WAL;"); err != nil {
		slog.Warn("failed to set WAL mode", "error", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create sentiment_reports: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close はDBを閉じます。
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Save は同じ日付のレポートを置き換えます。
func (s *SQLiteStore) Save(ctx context.Context, r entity.Report) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode report %s: %w", r.Date, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sentiment_reports (date, payload, idx, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			payload = excluded.payload,
			idx = excluded.idx,
			created_at = excluded.created_at
	`, r.Date, string(payload), r.Index, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("upsert report %s: %w", r.Date, err)
	}
	return nil
}

// Get は指定日のレポートを返します。無ければ usecase.ErrReportNotFound です。
func (s *SQLiteStore) Get(ctx context.Context, date string) (entity.Report, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		"SELECT payload FROM sentiment_reports WHERE date = ?", date).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.Report{}, usecase.ErrReportNotFound
	}
	if err != nil {
		return entity.Report{}, fmt.Errorf("query report %s: %w", date, err)
	}
	return decode(payload)
}

// Range は from〜to（両端含む）のレポートを日付の昇順で返します。
func (s *SQLiteStore) Range(ctx context.Context, from, to string) ([]entity.Report, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT payload FROM sentiment_reports WHERE date >= ? AND date <= ? ORDER BY date ASC", from, to)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer rows.Close()

	var out []entity.Report
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		r, err := decode(payload)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func decode(payload string) (entity.Report, error) {
	var r entity.Report
	if err := json.Unmarshal([]byte(payload), &r); err != nil {
		return entity.Report{}, fmt.Errorf("decode report: %w", err)
	}
	return r, nil
}
