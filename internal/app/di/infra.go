package di

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	stocksadapters "alpha_sentiment/internal/feature/stocks/adapters"
	"alpha_sentiment/internal/platform/calendar"
	infradb "alpha_sentiment/internal/platform/db"
	"alpha_sentiment/internal/platform/http/handler"
	infraredis "alpha_sentiment/internal/platform/redis"
	"alpha_sentiment/internal/shared/env"
)

// Infra はフィーチャー間で共有する接続です。DBとRedisはnilの場合があります。
type Infra struct {
	DB       *gorm.DB
	Redis    *redis.Client
	Location *time.Location
	Calendar *calendar.TradingCalendar
	LLM      LLM
}

// NewInfra はDB、Redis、LLM、取引カレンダーを準備します。
// DBとRedisに接続できない場合は警告を出し、それらを使わずに動作します。
func NewInfra(ctx context.Context) *Infra {
	loc := env.Location("ALPHA_SENTIMENT_TIMEZONE", "Asia/Shanghai")
	inf := &Infra{
		Location: loc,
		Calendar: calendar.New(calendar.MICShanghai, loc),
		LLM:      NewLLM(ctx),
	}

	db, err := infradb.OpenDB(infradb.LoadConfigFromEnv(), stocksadapters.Models()...)
	if err != nil {
		slog.Warn("database unavailable, score history disabled", "error", err)
	} else {
		inf.DB = db
	}

	rdb, err := infraredis.NewRedisClient(infraredis.LoadConfig())
	switch {
	case errors.Is(err, infraredis.ErrDisabled):
		slog.Info("Redis disabled, running without cache")
	case err != nil:
		slog.Warn("Redis unavailable, running without cache", "error", err)
	default:
		inf.Redis = rdb
	}
	return inf
}

// Checkers は /healthz で確認する依存先です。
func (i *Infra) Checkers() map[string]handler.Checker {
	checks := map[string]handler.Checker{}
	if i.DB != nil {
		checks["db"] = func(ctx context.Context) error {
			sqlDB, err := i.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}
	}
	if i.Redis != nil {
		checks["redis"] = func(ctx context.Context) error {
			return i.Redis.Ping(ctx).Err()
		}
	}
	return checks
}

// Close は接続を閉じます。
func (i *Infra) Close() {
	if i.Redis != nil {
		if err := i.Redis.Close(); err != nil {
			slog.Error("failed to close Redis client", "error", err)
		}
	}
	if i.DB != nil {
		if sqlDB, err := i.DB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				slog.Error("failed to close database", "error", err)
			}
		}
	}
}
