package logger

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

var _ gormlogger.Interface = (*GormLogger)(nil)

func traceSQL(l *GormLogger, ctx context.Context, elapsed time.Duration, err error) {
	l.Trace(ctx, time.Now().Add(-elapsed), func() (string, int64) {
		return `SELECT * FROM "items" WHERE client_id = 'x'`, 3
	}, err)
}

func TestGormLogger_Trace(t *testing.T) {
	tests := []struct {
		name      string
		level     gormlogger.LogLevel
		elapsed   time.Duration
		err       error
		wantMsg   string
		wantLevel zapcore.Level
	}{
		{name: "error", level: gormlogger.Warn, err: errors.New("connection reset"), wantMsg: "SQL Error", wantLevel: zapcore.ErrorLevel},
		{name: "slow query", level: gormlogger.Warn, elapsed: time.Second, wantMsg: "SLOW SQL >= 200ms", wantLevel: zapcore.WarnLevel},
		{name: "normal query at info", level: gormlogger.Info, wantMsg: "SQL Query", wantLevel: zapcore.DebugLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, recorded := observer.New(zapcore.DebugLevel)
			l := NewGormLogger(zap.New(core), tt.level)

			traceSQL(l, context.Background(), tt.elapsed, tt.err)

			entries := recorded.All()
			require.Len(t, entries, 1)
			assert.Equal(t, tt.wantMsg, entries[0].Message)
			assert.Equal(t, tt.wantLevel, entries[0].Level)
			assert.Equal(t, int64(3), entries[0].ContextMap()["rows"])
		})
	}
}

func TestGormLogger_TraceQuietCases(t *testing.T) {
	t.Run("record not found is ignored", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		l := NewGormLogger(zap.New(core), gormlogger.Info)
		traceSQL(l, context.Background(), 0, gormlogger.ErrRecordNotFound)
		assert.Empty(t, recorded.All())
	})

	t.Run("silent level logs nothing", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		l := NewGormLogger(zap.New(core), gormlogger.Silent)
		traceSQL(l, context.Background(), time.Second, errors.New("boom"))
		assert.Empty(t, recorded.All())
	})

	t.Run("fast query at warn level is quiet", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		l := NewGormLogger(zap.New(core), gormlogger.Warn, WithSlowThreshold(time.Minute))
		traceSQL(l, context.Background(), time.Second, nil)
		assert.Empty(t, recorded.All())
	})
}

func TestGormLogger_ContextFields(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	l := NewGormLogger(zap.New(core), gormlogger.Warn, WithTraceContextFields())

	ctx := WithClientID(WithRequestID(context.Background(), "req-7"), "client-7")
	traceSQL(l, ctx, 0, errors.New("boom"))

	fields := recorded.All()[0].ContextMap()
	assert.Equal(t, "req-7", fields["request_id"])
	assert.Equal(t, "client-7", fields["client_id"])
}

func TestGormLogger_RecordNotFoundOptIn(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	l := NewGormLogger(zap.New(core), gormlogger.Warn, WithRecordNotFound())
	traceSQL(l, context.Background(), 0, gormlogger.ErrRecordNotFound)
	require.Len(t, recorded.All(), 1)
	assert.Equal(t, "SQL Error", recorded.All()[0].Message)
}

func TestGormLogger_ClipsLongStatements(t *testing.T) {
	long := "INSERT INTO outfits (stage) VALUES ('" + strings.Repeat("x", 5000) + "')"
	run := func(opts ...GormLoggerOption) string {
		core, recorded := observer.New(zapcore.DebugLevel)
		l := NewGormLogger(zap.New(core), gormlogger.Info, opts...)
		l.Trace(context.Background(), time.Now(), func() (string, int64) { return long, 1 }, nil)
		require.Len(t, recorded.All(), 1)
		return recorded.All()[0].ContextMap()["sql"].(string)
	}

	clipped := run()
	assert.Len(t, clipped, maxLoggedSQL+len("...(truncated)"))
	assert.True(t, strings.HasSuffix(clipped, "...(truncated)"))
	assert.Equal(t, long, run(WithFullSQL(true)))
}

func TestGormLogger_Printf(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	l := NewGormLogger(zap.New(core), gormlogger.Warn)

	l.Info(context.Background(), "migrated %d tables", 3)
	l.Warn(context.Background(), "slow pool %s", "closet")
	require.Len(t, recorded.All(), 1)
	assert.Equal(t, "slow pool closet", recorded.All()[0].Message)
}

func TestGormLogger_LogMode(t *testing.T) {
	core, _ := observer.New(zapcore.InfoLevel)
	l := NewGormLogger(zap.New(core), gormlogger.Info)

	changed, ok := l.LogMode(gormlogger.Error).(*GormLogger)
	require.True(t, ok)
	assert.Equal(t, gormlogger.Error, changed.level)
	assert.Equal(t, gormlogger.Info, l.level)
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Error, MapGormLogLevel("error"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("unknown"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("INFO"))
}
