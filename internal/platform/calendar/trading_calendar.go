// Package calendar は上海証券取引所（xshg）の取引日判定を提供します。
package calendar

import (
	"log/slog"
	"time"

	"github.com/scmhub/calendar"
)

// MICShanghai は上海証券取引所のMICコードです。
const MICShanghai = "xshg"

// TradingCalendar は取引日と引け時刻からセッション日付を計算します。
// ライブラリのカレンダーが読み込めない場合は月〜金を取引日とみなします。
type TradingCalendar struct {
	cal         *calendar.Calendar
	loc         *time.Location
	closeHour   int
	closeMinute int
}

// New はMICコードのカレンダーを読み込みます。引けは15:30、タイムゾーンはlocを使います。
// loc がnilの場合はカレンダー側のタイムゾーン、それも無ければUTC+8を使います。
// MICコードのカレンダーが無い場合は NewWeekdayCalendar にフォールバックします。
func New(mic string, loc *time.Location) *TradingCalendar {
	cal := calendar.GetCalendar(mic)
	if cal == nil {
		slog.Warn("trading calendar unavailable, using Mon-Fri fallback", "mic", mic)
		return NewWeekdayCalendar(loc)
	}
	if loc == nil {
		loc = cal.Loc
	}
	tc := NewWeekdayCalendar(loc)
	tc.cal = cal
	return tc
}

// NewWeekdayCalendar は祝日を考慮しない月〜金のカレンダーを返します。
func NewWeekdayCalendar(loc *time.Location) *TradingCalendar {
	if loc == nil {
		loc = time.FixedZone("CST", 8*60*60)
	}
	return &TradingCalendar{loc: loc, closeHour: 15, closeMinute: 30}
}

// Location はセッション計算に使うタイムゾーンです。
func (tc *TradingCalendar) Location() *time.Location {
	return tc.loc
}

// IsTradingDay はdateが取引日かを返します。
func (tc *TradingCalendar) IsTradingDay(date time.Time) bool {
	date = date.In(tc.loc)
	if tc.cal == nil {
		wd := date.Weekday()
		return wd != time.Saturday && wd != time.Sunday
	}
	return tc.cal.IsBusinessDay(date)
}

// LatestClosedSession はnow時点で引けまで終わっている直近の取引日（0時）を返します。
// 取引日でも15:30前であれば前の取引日になります。
func (tc *TradingCalendar) LatestClosedSession(now time.Time) time.Time {
	now = now.In(tc.loc)
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, tc.loc)
	closeAt := day.Add(time.Duration(tc.closeHour)*time.Hour + time.Duration(tc.closeMinute)*time.Minute)

	if !tc.IsTradingDay(day) || now.Before(closeAt) {
		day = day.AddDate(0, 0, -1)
	}
	// 長期休場でも必ず止まるよう上限を設ける
	for i := 0; i < 30 && !tc.IsTradingDay(day); i++ {
		day = day.AddDate(0, 0, -1)
	}
	return day
}
