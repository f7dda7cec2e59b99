package adapters

import (
	"context"
	"fmt"
	"time"

	"alpha_sentiment/internal/feature/stocks/domain/entity"
	"alpha_sentiment/internal/feature/stocks/usecase"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type historyGorm struct {
	db *gorm.DB
}

var (
	_ usecase.HistoryRecorder = (*historyGorm)(nil)
	_ usecase.HistoryReader   = (*historyGorm)(nil)
)

// NewHistoryRepository は生成履歴とスコア履歴のリポジトリを生成します。
func NewHistoryRepository(db *gorm.DB) *historyGorm {
	return &historyGorm{db: db}
}

// RunModel は1回のデータ生成の記録です。
type RunModel struct {
	ID         uint      `gorm:"primaryKey"`
	StartedAt  time.Time `gorm:"not null;index"`
	DurationMs int64     `gorm:"not null;default:0"`
	Total      int       `gorm:"not null;default:0"`
	Success    int       `gorm:"not null;default:0"`
	Failed     int       `gorm:"not null;default:0"`
}

func (RunModel) TableName() string {
	return "generation_runs"
}

// ScoreModel は銘柄ごとの日次感情スコアです。(code, date) で一意です。
type ScoreModel struct {
	ID        uint   `gorm:"primaryKey"`
	Code      string `gorm:"size:16;not null;uniqueIndex:score_code_date,priority:1"`
	Date      string `gorm:"size:10;not null;uniqueIndex:score_code_date,priority:2"`
	Name      string `gorm:"size:64;not null;default:''"`
	Score     int    `gorm:"not null"`
	Sentiment string `gorm:"size:16;not null;default:'neutral'"`
}

func (ScoreModel) TableName() string {
	return "sentiment_scores"
}

// Models はAutoMigrate対象のモデルです。
func Models() []any {
	return []any{&RunModel{}, &ScoreModel{}}
}

func toRunModel(r entity.RunReport) RunModel {
	return RunModel{
		StartedAt:  r.StartedAt,
		DurationMs: r.Duration.Milliseconds(),
		Total:      r.Total,
		Success:    r.Success,
		Failed:     r.Failed,
	}
}

// RecordRun は生成結果とその日のスコアを1トランザクションで保存します。
func (r *historyGorm) RecordRun(ctx context.Context, report entity.RunReport, date string, scores []entity.StockScore) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		run := toRunModel(report)
		if err := tx.Create(&run).Error; err != nil {
			return fmt.Errorf("insert run: %w", err)
		}
		if len(scores) == 0 {
			return nil
		}

		ms := make([]ScoreModel, 0, len(scores))
		for _, s := range scores {
			ms = append(ms, ScoreModel{Code: s.Code, Date: date, Name: s.Name, Score: s.Score, Sentiment: s.Sentiment})
		}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}, {Name: "date"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "score", "sentiment"}),
		}).Create(&ms).Error
		if err != nil {
			return fmt.Errorf("upsert scores: %w", err)
		}
		return nil
	})
}

// ScoreHistory は直近days件の日次スコアを日付の昇順で返します。
func (r *historyGorm) ScoreHistory(ctx context.Context, code string, days int) ([]entity.ScorePoint, error) {
	var rows []ScoreModel
	q := r.db.WithContext(ctx).
		Where("code = ?", code).
		Order("date DESC")
	if days > 0 {
		q = q.Limit(days)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]entity.ScorePoint, len(rows))
	for i, m := range rows {
		out[len(rows)-1-i] = entity.ScorePoint{Date: m.Date, Score: m.Score, Sentiment: m.Sentiment}
	}
	return out, nil
}

// LatestRuns は新しい順に最大n件の生成記録を返します。
func (r *historyGorm) LatestRuns(ctx context.Context, n int) ([]entity.RunReport, error) {
	var rows []RunModel
	q := r.db.WithContext(ctx).Order("started_at DESC").Order("id DESC")
	if n > 0 {
		q = q.Limit(n)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.RunReport, 0, len(rows))
	for _, m := range rows {
		out = append(out, entity.RunReport{
			StartedAt: m.StartedAt,
			Duration:  time.Duration(m.DurationMs) * time.Millisecond,
			Total:     m.Total,
			Success:   m.Success,
			Failed:    m.Failed,
		})
	}
	return out, nil
}
