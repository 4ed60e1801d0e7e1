package logging

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// GormLogger routes GORM's SQL and diagnostic output through a Logger
type GormLogger struct {
	logger        Logger
	level         gormlogger.LogLevel
	slowThreshold time.Duration
}

// NewGormLogger creates a GORM logger writing to the given Logger
func NewGormLogger(logger Logger, level gormlogger.LogLevel, slowThreshold time.Duration) *GormLogger {
	return &GormLogger{
		logger:        logger,
		level:         level,
		slowThreshold: slowThreshold,
	}
}

// GormLogLevel maps an application log level onto GORM's coarser levels
func GormLogLevel(level string) gormlogger.LogLevel {
	switch level {
	case "silent":
		return gormlogger.Silent
	case "debug":
		return gormlogger.Info
	case "info", "warn":
		return gormlogger.Warn
	case "error":
		return gormlogger.Error
	default:
		return gormlogger.Warn
	}
}

// LogMode returns a copy of the logger at the given level
func (g *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *g
	clone.level = level
	return &clone
}

// Info logs GORM informational messages
func (g *GormLogger) Info(_ context.Context, msg string, args ...interface{}) {
	if g.level >= gormlogger.Info {
		g.logger.Info(fmt.Sprintf(msg, args...), nil)
	}
}

// Warn logs GORM warnings
func (g *GormLogger) Warn(_ context.Context, msg string, args ...interface{}) {
	if g.level >= gormlogger.Warn {
		g.logger.Warn(fmt.Sprintf(msg, args...), nil)
	}
}

// Error logs GORM errors
func (g *GormLogger) Error(_ context.Context, msg string, args ...interface{}) {
	if g.level >= gormlogger.Error {
		g.logger.Error(fmt.Sprintf(msg, args...), nil, nil)
	}
}

// Trace logs a finished SQL statement
func (g *GormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	switch {
	case err != nil && g.level >= gormlogger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		g.logger.Error("query failed", err, map[string]interface{}{
			"sql":     sql,
			"rows":    rows,
			"elapsed": elapsed.String(),
		})
	case g.slowThreshold > 0 && elapsed > g.slowThreshold && g.level >= gormlogger.Warn:
		sql, rows := fc()
		g.logger.Warn("slow query", map[string]interface{}{
			"sql":       sql,
			"rows":      rows,
			"elapsed":   elapsed.String(),
			"threshold": g.slowThreshold.String(),
		})
	case g.level >= gormlogger.Info:
		sql, rows := fc()
		g.logger.Debug("query", map[string]interface{}{
			"sql":     sql,
			"rows":    rows,
			"elapsed": elapsed.String(),
		})
	}
}
