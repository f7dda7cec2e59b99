package usecase

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"alpha_sentiment/internal/feature/stocks/domain/entity"
)

const (
	// DefaultHistoryDays は履歴取得の既定日数です。
	DefaultHistoryDays = 30
	// MaxHistoryDays は履歴取得の上限日数です。
	MaxHistoryDays = 365
	// DefaultRunsLimit は生成記録の既定件数です。
	DefaultRunsLimit = 20
	// MaxRunsLimit は生成記録の上限件数です。
	MaxRunsLimit = 100
)

// ファイル名に使えるコードだけを受け付ける
var codeRe = regexp.MustCompile(`^[A-Za-z0-9]{1,12}$`)

// QueryUsecase はスナップショットとスコア履歴の参照を提供します。
type QueryUsecase struct {
	snapshots SnapshotReader
	index     SnapshotIndex
	history   HistoryReader
}

// NewQueryUsecase は QueryUsecase を生成します。historyはnilでも構いません。
// snapshots はキャッシュ経由、index はディスク上のファイルを直接参照します。
func NewQueryUsecase(snapshots SnapshotReader, index SnapshotIndex, history HistoryReader) *QueryUsecase {
	return &QueryUsecase{snapshots: snapshots, index: index, history: history}
}

// HotStocks は最新の人気銘柄スナップショットを返します。
func (q *QueryUsecase) HotStocks(ctx context.Context) (entity.HotStocksSnapshot, error) {
	return q.snapshots.ReadHotStocks(ctx)
}

// Stock は銘柄詳細を返します。大文字化したコード、正規化したコードの順に探します。
func (q *QueryUsecase) Stock(ctx context.Context, code string) (entity.StockSnapshot, error) {
	code = strings.TrimSpace(code)
	candidates := []string{strings.ToUpper(code)}
	if cleaned := entity.CleanCode(code); cleaned != candidates[0] {
		candidates = append(candidates, cleaned)
	}

	for _, c := range candidates {
		if !codeRe.MatchString(c) {
			continue
		}
		snap, err := q.snapshots.ReadStock(ctx, c)
		if err == nil {
			return snap, nil
		}
		if !errors.Is(err, ErrSnapshotNotFound) {
			return entity.StockSnapshot{}, err
		}
	}
	return entity.StockSnapshot{}, ErrSnapshotNotFound
}

// LastUpdate は hot_stocks.json の更新時刻を返します。スナップショットが無ければ ok=false です。
func (q *QueryUsecase) LastUpdate(ctx context.Context) (string, bool) {
	updated, err := q.index.LastUpdated()
	if err != nil {
		return "", false
	}
	return updated, true
}

// StockCodes は詳細ファイルがある銘柄コードを昇順で返します。
func (q *QueryUsecase) StockCodes(ctx context.Context) ([]string, error) {
	return q.index.ListCodes()
}

// LatestRuns は新しい順に生成記録を返します。nは1〜MaxRunsLimitに丸めます。
func (q *QueryUsecase) LatestRuns(ctx context.Context, n int) ([]entity.RunReport, error) {
	if q.history == nil {
		return nil, ErrHistoryUnavailable
	}
	return q.history.LatestRuns(ctx, ClampRuns(n))
}

// ScoreHistory は銘柄の日次スコアを古い順に返します。daysは1〜365に丸めます。
func (q *QueryUsecase) ScoreHistory(ctx context.Context, code string, days int) ([]entity.ScorePoint, error) {
	if q.history == nil {
		return nil, ErrHistoryUnavailable
	}
	return q.history.ScoreHistory(ctx, entity.CleanCode(code), ClampDays(days))
}

// ClampDays は履歴日数を1〜MaxHistoryDaysに丸めます。0以下は既定値です。
func ClampDays(days int) int {
	if days <= 0 {
		return DefaultHistoryDays
	}
	if days > MaxHistoryDays {
		return MaxHistoryDays
	}
	return days
}

// ClampRuns は生成記録の件数を1〜MaxRunsLimitに丸めます。0以下は既定値です。
func ClampRuns(n int) int {
	if n <= 0 {
		return DefaultRunsLimit
	}
	if n > MaxRunsLimit {
		return MaxRunsLimit
	}
	return n
}
