package cache

import (
	"time"
)

// RefreshHour, RefreshMinute は日次データ刷新の時刻（上海時間 15:30 の引け後）です。
const (
	RefreshHour   = 15
	RefreshMinute = 30
)

// TimeUntilNextRefresh は now から次の刷新時刻（loc における hour:minute）までの期間を返します。
// 当日の刷新時刻を過ぎていれば翌日の同時刻までです。
func TimeUntilNextRefresh(now time.Time, loc *time.Location, hour, minute int) time.Duration {
	if loc == nil {
		loc = time.Local
	}
	now = now.In(loc)

	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, loc)
	if !now.Before(next) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}

// UntilNextRefresh は TimeUntilNextRefresh を現在時刻で評価するTTL関数を返します。
func UntilNextRefresh(loc *time.Location) func() time.Duration {
	return func() time.Duration {
		return TimeUntilNextRefresh(time.Now(), loc, RefreshHour, RefreshMinute)
	}
}
