package adapters

import (
	"context"
	"testing"
	"time"

	"alpha_sentiment/internal/feature/stocks/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB はテスト用のインメモリSQLiteを準備します。
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to initialize test database")

	// :memory: は接続ごとに別DBになるため1接続に固定する
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(Models()...), "failed to migrate tables")
	return db
}

func TestNewHistoryRepository(t *testing.T) {
	repo := NewHistoryRepository(setupTestDB(t))
	assert.NotNil(t, repo)
	assert.NotNil(t, repo.db)
}

func TestHistoryGorm_RecordRun_UpsertsScores(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewHistoryRepository(db)

	started := time.Date(2025, 1, 2, 15, 30, 0, 0, time.UTC)
	report := entity.RunReport{StartedAt: started, Duration: 1500 * time.Millisecond, Total: 2, Success: 1, Failed: 1}

	require.NoError(t, repo.RecordRun(ctx, report, "2025-01-02", []entity.StockScore{
		{Code: "600519", Name: "贵州茅台", Score: 60, Sentiment: "neutral"},
	}))
	// 同日の再実行はスコアを上書きする
	require.NoError(t, repo.RecordRun(ctx, report, "2025-01-02", []entity.StockScore{
		{Code: "600519", Name: "贵州茅台", Score: 75, Sentiment: "bullish"},
	}))

	var count int64
	require.NoError(t, db.Model(&ScoreModel{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	points, err := repo.ScoreHistory(ctx, "600519", 30)
	require.NoError(t, err)
	assert.Equal(t, []entity.ScorePoint{{Date: "2025-01-02", Score: 75, Sentiment: "bullish"}}, points)

	runs, err := repo.LatestRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, 1500*time.Millisecond, runs[0].Duration)
	assert.Equal(t, 2, runs[0].Total)
}

func TestHistoryGorm_ScoreHistory(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewHistoryRepository(db)

	for _, m := range []ScoreModel{
		{Code: "600519", Date: "2025-01-03", Score: 70},
		{Code: "600519", Date: "2025-01-01", Score: 50},
		{Code: "600519", Date: "2025-01-02", Score: 60},
		{Code: "000001", Date: "2025-01-02", Score: 40},
	} {
		require.NoError(t, db.Create(&m).Error)
	}

	tests := []struct {
		name      string
		code      string
		days      int
		wantDates []string
	}{
		{name: "ascending order", code: "600519", days: 30, wantDates: []string{"2025-01-01", "2025-01-02", "2025-01-03"}},
		{name: "limit keeps latest days", code: "600519", days: 2, wantDates: []string{"2025-01-02", "2025-01-03"}},
		{name: "unknown code", code: "300750", days: 30, wantDates: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			points, err := repo.ScoreHistory(ctx, tt.code, tt.days)
			require.NoError(t, err)
			dates := make([]string, 0, len(points))
			for _, p := range points {
				dates = append(dates, p.Date)
			}
			assert.Equal(t, tt.wantDates, dates)
		})
	}
}

func TestHistoryGorm_RecordRun_NoScores(t *testing.T) {
	t.Parallel()
	repo := NewHistoryRepository(setupTestDB(t))

	require.NoError(t, repo.RecordRun(context.Background(), entity.RunReport{StartedAt: time.Now()}, "2025-01-02", nil))
	runs, err := repo.LatestRuns(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}
