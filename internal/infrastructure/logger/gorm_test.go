package logger

import (
	"context"
	"errors"
	"testing"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func newObservedGormLogger(level gormlogger.LogLevel, opts ...GormLoggerOption) (*GormLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return NewGormLogger(zap.New(core), level, opts...), logs
}

func query(sql string, rows int64) func() (string, int64) {
	return func() (string, int64) { return sql, rows }
}

func TestGormLogger_Trace(t *testing.T) {
	ctx := WithTenantID(WithRequestID(context.Background(), "req-9"), "tenant-9")

	t.Run("error carries correlation ids", func(t *testing.T) {
		l, logs := newObservedGormLogger(gormlogger.Warn)
		l.Trace(ctx, time.Now(), query(`UPDATE "products" SET stock_quantity = -1`, 0), errors.New("check constraint violated"))

		require.Equal(t, 1, logs.Len())
		entry := logs.All()[0]
		assert.Equal(t, zapcore.ErrorLevel, entry.Level)
		assert.Equal(t, "SQL Error", entry.Message)
		assert.Equal(t, "req-9", entry.ContextMap()["request_id"])
		assert.Equal(t, "tenant-9", entry.ContextMap()["tenant_id"])
		assert.Equal(t, "gorm", entry.LoggerName)
	})

	t.Run("record not found is ignored", func(t *testing.T) {
		l, logs := newObservedGormLogger(gormlogger.Warn)
		l.Trace(ctx, time.Now(), query("SELECT", 0), gormlogger.ErrRecordNotFound)
		assert.Equal(t, 0, logs.Len())
	})

	t.Run("slow query warns", func(t *testing.T) {
		l, logs := newObservedGormLogger(gormlogger.Warn, WithSlowThreshold(10*time.Millisecond))
		l.Trace(ctx, time.Now().Add(-50*time.Millisecond), query("SELECT ... FOR UPDATE", 1), nil)

		require.Equal(t, 1, logs.Len())
		assert.Equal(t, zapcore.WarnLevel, logs.All()[0].Level)
		assert.Contains(t, logs.All()[0].Message, "SLOW SQL")
	})

	t.Run("fast query only at info", func(t *testing.T) {
		l, logs := newObservedGormLogger(gormlogger.Warn)
		l.Trace(ctx, time.Now(), query("SELECT 1", 1), nil)
		assert.Equal(t, 0, logs.Len())

		l.LogMode(gormlogger.Info).Trace(ctx, time.Now(), query("SELECT 1", 1), nil)
		require.Equal(t, 1, logs.Len())
		assert.Equal(t, "SQL Query", logs.All()[0].Message)
	})

	t.Run("retryable conflicts are warnings", func(t *testing.T) {
		l, logs := newObservedGormLogger(gormlogger.Warn)
		err := fmt.Errorf("commit: %w", &pgconn.PgError{Code: "40001", Message: "could not serialize access"})
		l.Trace(ctx, time.Now(), query("UPDATE products", 0), err)

		require.Equal(t, 1, logs.Len())
		assert.Equal(t, zapcore.WarnLevel, logs.All()[0].Level)
		assert.Equal(t, "SQL conflict", logs.All()[0].Message)
	})

	t.Run("silent logs nothing", func(t *testing.T) {
		l, logs := newObservedGormLogger(gormlogger.Silent)
		l.Trace(ctx, time.Now(), query("SELECT", 0), errors.New("boom"))
		assert.Equal(t, 0, logs.Len())
	})
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Error, MapGormLogLevel("error"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("warn"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel(""))
}
