package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/myu-chat-backend/internal/platform/logger"
)

const slowQueryThreshold = time.Second

// gormLog routes gorm output through the service logger. Only warnings,
// errors and slow queries are emitted; record-not-found is expected and
// ignored.
type gormLog struct {
	log   *logger.Logger
	level gormLogger.LogLevel
}

func NewGormLogger(log *logger.Logger) gormLogger.Interface {
	return &gormLog{log: log, level: gormLogger.Warn}
}

func (g *gormLog) LogMode(level gormLogger.LogLevel) gormLogger.Interface {
	cp := *g
	cp.level = level
	return &cp
}

func (g *gormLog) Info(_ context.Context, msg string, args ...interface{}) {
	if g.level >= gormLogger.Info {
		g.log.Info(fmt.Sprintf(msg, args...))
	}
}

func (g *gormLog) Warn(_ context.Context, msg string, args ...interface{}) {
	if g.level >= gormLogger.Warn {
		g.log.Warn(fmt.Sprintf(msg, args...))
	}
}

func (g *gormLog) Error(_ context.Context, msg string, args ...interface{}) {
	if g.level >= gormLogger.Error {
		g.log.Error(fmt.Sprintf(msg, args...))
	}
}

func (g *gormLog) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.level <= gormLogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && g.level >= gormLogger.Error:
		sql, rows := fc()
		g.log.Error("gorm query failed", "error", err, "elapsed_ms", elapsed.Milliseconds(), "rows", rows, "sql", logger.Preview(sql, 200))
	case elapsed > slowQueryThreshold && g.level >= gormLogger.Warn:
		sql, rows := fc()
		g.log.Warn("gorm slow query", "elapsed_ms", elapsed.Milliseconds(), "rows", rows, "sql", logger.Preview(sql, 200))
	case g.level >= gormLogger.Info:
		sql, rows := fc()
		g.log.Debug("gorm query", "elapsed_ms", elapsed.Milliseconds(), "rows", rows, "sql", logger.Preview(sql, 200))
	}
}
