package logging

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func observed(level zapcore.Level) (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return zap.New(core), logs
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, zapcore.InfoLevel, level)

	level, err = ParseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, zapcore.DebugLevel, level)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}

func TestZapLoggerContext(t *testing.T) {
	base, logs := observed(zapcore.DebugLevel)
	logger := NewZapLoggerFrom(base, "http").
		WithScope("request").
		WithContext(map[string]interface{}{"request_id": "abc"})

	logger.Error("failed", errors.New("boom"), map[string]interface{}{"status": 500})

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "[http] failed", entry.Message)
	assert.Equal(t, zapcore.ErrorLevel, entry.Level)

	fields := entry.ContextMap()
	assert.Equal(t, "request", fields["scope"])
	assert.Equal(t, "abc", fields["request_id"])
	assert.EqualValues(t, 500, fields["status"])
	assert.Equal(t, "boom", fields["error"])
}

func TestWithContextDoesNotLeakIntoParent(t *testing.T) {
	base, logs := observed(zapcore.DebugLevel)
	parent := NewZapLoggerFrom(base, "system")
	_ = parent.WithContext(map[string]interface{}{"child": true})

	parent.Info("hello", nil)

	require.Equal(t, 1, logs.Len())
	assert.NotContains(t, logs.All()[0].ContextMap(), "child")
}

func TestFactoryCachesComponentLoggers(t *testing.T) {
	base, _ := observed(zapcore.DebugLevel)
	factory := NewLoggerFactoryFrom(base)

	assert.Same(t, factory.CreateLogger("gorm"), factory.CreateLogger("gorm"))
	assert.NotSame(t, factory.CreateLogger("gorm"), factory.CreateLogger("http"))
}

func TestRepositoryAndJobLoggers(t *testing.T) {
	base, logs := observed(zapcore.DebugLevel)
	factory := NewLoggerFactoryFrom(base)

	repo := factory.CreateRepositoryLogger("characters").(*RepositoryLogger)
	repo.WithRecord(42).Warn("update skipped", nil)

	job := factory.CreateJobLogger("spawn").WithContext(map[string]interface{}{"run_id": "r1"})
	job.Debug("Job completed", map[string]interface{}{"spawned": 3})

	require.Equal(t, 2, logs.Len())

	repoEntry := logs.All()[0]
	assert.Equal(t, "[database] [repository] update skipped", repoEntry.Message)
	assert.Equal(t, "characters", repoEntry.ContextMap()["table"])
	assert.EqualValues(t, 42, repoEntry.ContextMap()["record_id"])

	jobEntry := logs.All()[1]
	assert.Equal(t, "[jobs] [spawn] Job completed", jobEntry.Message)
	assert.Equal(t, "spawn", jobEntry.ContextMap()["job"])
	assert.Equal(t, "r1", jobEntry.ContextMap()["run_id"])
}

func TestGlobalLoggerFactory(t *testing.T) {
	previous := GetGlobalLoggerFactory()
	t.Cleanup(func() { SetGlobalLoggerFactory(previous) })

	base, logs := observed(zapcore.InfoLevel)
	SetGlobalLoggerFactory(NewLoggerFactoryFrom(base))
	GetGlobalLoggerFactory().CreateLogger("system").Info("ready", nil)

	assert.Equal(t, 1, logs.Len())
}

func TestGormLogLevel(t *testing.T) {
	cases := map[string]gormlogger.LogLevel{
		"silent": gormlogger.Silent,
		"debug":  gormlogger.Info,
		"info":   gormlogger.Warn,
		"warn":   gormlogger.Warn,
		"error":  gormlogger.Error,
		"":       gormlogger.Warn,
	}
	for in, want := range cases {
		assert.Equal(t, want, GormLogLevel(in), in)
	}
}

func TestGormLoggerTrace(t *testing.T) {
	base, logs := observed(zapcore.DebugLevel)
	gl := NewGormLogger(NewZapLoggerFrom(base, "gorm"), gormlogger.Warn, 50*time.Millisecond)
	ctx := context.Background()
	query := func() (string, int64) { return "SELECT 1", 1 }

	gl.Trace(ctx, time.Now(), query, nil)
	assert.Zero(t, logs.Len(), "fast queries are not logged at warn")

	gl.Trace(ctx, time.Now().Add(-time.Second), query, nil)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "[gorm] slow query", logs.All()[0].Message)

	gl.Trace(ctx, time.Now(), query, errors.New("syntax error"))
	require.Equal(t, 2, logs.Len())
	assert.Equal(t, zapcore.ErrorLevel, logs.All()[1].Level)

	gl.LogMode(gormlogger.Silent).Trace(ctx, time.Now(), query, errors.New("ignored"))
	assert.Equal(t, 2, logs.Len())

	gl.LogMode(gormlogger.Info).Trace(ctx, time.Now(), query, nil)
	require.Equal(t, 3, logs.Len())
	assert.Equal(t, zapcore.DebugLevel, logs.All()[2].Level)
}
