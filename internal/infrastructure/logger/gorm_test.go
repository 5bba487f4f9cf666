package logger

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

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Error, MapGormLogLevel("error"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("warn"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel(""))
}

func TestGormLogger_Trace(t *testing.T) {
	sql := func() (string, int64) { return "SELECT 1", 1 }

	t.Run("logs errors with request id", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		l := NewGormLogger(zap.New(core), gormlogger.Warn, 200*time.Millisecond)
		ctx, _ := WithRequestID(context.Background(), zap.NewNop(), "req-1")

		l.Trace(ctx, time.Now(), sql, errors.New("syntax error"))

		entries := recorded.FilterMessage("SQL Error").All()
		require.Len(t, entries, 1)
		assert.Equal(t, "req-1", entries[0].ContextMap()["request_id"])
	})

	t.Run("skips record not found", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		l := NewGormLogger(zap.New(core), gormlogger.Warn, 200*time.Millisecond)

		l.Trace(context.Background(), time.Now(), sql, gormlogger.ErrRecordNotFound)

		assert.Zero(t, recorded.Len())
	})

	t.Run("warns on slow queries", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		l := NewGormLogger(zap.New(core), gormlogger.Warn, time.Millisecond)

		l.Trace(context.Background(), time.Now().Add(-time.Second), sql, nil)

		require.Equal(t, 1, recorded.Len())
		assert.Equal(t, zapcore.WarnLevel, recorded.All()[0].Level)
	})

	t.Run("silent logs nothing", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		l := NewGormLogger(zap.New(core), gormlogger.Warn, 0).LogMode(gormlogger.Silent)

		l.Trace(context.Background(), time.Now(), sql, errors.New("boom"))

		assert.Zero(t, recorded.Len())
	})
}
