// Package usecase は投稿の感情スコアから市場感情指数を算出します。
package usecase

import (
	"context"
	"time"

	"alpha_sentiment/internal/feature/marketsentiment/domain/entity"
)

// RawPostSource は指定日の生の投稿を読み込みます。
type RawPostSource interface {
	LoadRawPosts(ctx context.Context, date time.Time) ([]entity.RawPost, error)
}

// ProcessedWriter は処理済み投稿を保存します。
type ProcessedWriter interface {
	SaveProcessed(date time.Time, posts []entity.ProcessedPost) error
}

// ReportRepository は日次レポートを永続化します。
type ReportRepository interface {
	Save(ctx context.Context, r entity.Report) error
	Get(ctx context.Context, date string) (entity.Report, error)
	Range(ctx context.Context, from, to string) ([]entity.Report, error)
}
