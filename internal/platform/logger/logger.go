// Package logger はslogのデフォルトロガーを構成します。
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"alpha_sentiment/internal/shared/env"
)

// EnvKeyLevel はログレベルの環境変数です。旧名の LOG_LEVEL も受け付けます。
const EnvKeyLevel = "ALPHA_SENTIMENT_LOG_LEVEL"

// LevelFromEnv は環境変数からログレベル名を読みます。未設定ならINFOです。
func LevelFromEnv() string {
	return env.First("INFO", EnvKeyLevel, "LOG_LEVEL")
}

// ParseLevel は "DEBUG" / "INFO" / "WARN" / "ERROR" をslog.Levelに変換します。
// 未知の値はINFOとして扱います。
func ParseLevel(s string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New は w にJSON形式で出力するロガーを生成します。
func New(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)}))
}

// Setup は標準出力へ出力するロガーを生成し、slogのデフォルトに設定します。
func Setup(level string) *slog.Logger {
	l := New(os.Stdout, level)
	slog.SetDefault(l)
	return l
}
