// Package env は環境変数を既定値付きで読み込むヘルパーです。
package env

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// String はkeyの値を返します。未設定または空ならdefを返します。
func String(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// First はkeysを順に調べ、最初に設定されている値を返します。どれも未設定ならdefを返します。
func First(def string, keys ...string) string {
	for _, k := range keys {
		if v := String(k, ""); v != "" {
			return v
		}
	}
	return def
}

// Int はkeyを整数として読みます。解釈できない場合はdefを返します。
func Int(key string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return def
	}
	return v
}

// Duration はkeyを "2s" のような期間、または "2.5" のような秒数として読みます。
func Duration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if secs, err := strconv.ParseFloat(raw, 64); err == nil && secs >= 0 {
		return time.Duration(secs * float64(time.Second))
	}
	return def
}

// Location はkeyのIANAタイムゾーンを読み込みます。読み込めない場合は def を名前として試し、
// それも失敗すればUTC+8の固定ゾーンを返します。
func Location(key, def string) *time.Location {
	for _, name := range []string{String(key, def), def} {
		if loc, err := time.LoadLocation(name); err == nil {
			return loc
		}
	}
	return time.FixedZone("CST", 8*60*60)
}
