package logger

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	gormlogger "gorm.io/gorm/logger"
)

// DefaultSlowQuery is the slow query threshold used when none is configured.
const DefaultSlowQuery = 200 * time.Millisecond

// maxLoggedSQL caps statements in log lines. Outfit stage documents are
// stored inline and would otherwise flood the log.
const maxLoggedSQL = 2048

// GormLogger routes GORM's statement log into zap.
type GormLogger struct {
	zl        *zap.Logger
	level     gormlogger.LogLevel
	slow      time.Duration
	fullSQL   bool
	notFound  bool
	withTrace bool
}

// GormLoggerOption configures a GormLogger.
type GormLoggerOption func(*GormLogger)

// WithSlowThreshold sets the duration above which a query is reported at warn.
// Zero disables slow query reporting.
func WithSlowThreshold(d time.Duration) GormLoggerOption {
	return func(l *GormLogger) { l.slow = d }
}

// WithFullSQL disables statement truncation.
func WithFullSQL(full bool) GormLoggerOption {
	return func(l *GormLogger) { l.fullSQL = full }
}

// WithRecordNotFound reports gorm.ErrRecordNotFound as an error. Lookups by id
// miss routinely, so they are skipped by default.
func WithRecordNotFound() GormLoggerOption {
	return func(l *GormLogger) { l.notFound = true }
}

// WithTraceContextFields adds trace_id and span_id to statement log lines.
func WithTraceContextFields() GormLoggerOption {
	return func(l *GormLogger) { l.withTrace = true }
}

// NewGormLogger returns a GORM logger writing to a "gorm" child of zl.
func NewGormLogger(zl *zap.Logger, level gormlogger.LogLevel, opts ...GormLoggerOption) *GormLogger {
	l := &GormLogger{zl: zl.Named("gorm"), level: level, slow: DefaultSlowQuery}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	cp := *l
	cp.level = level
	return &cp
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Info, zapcore.InfoLevel, msg, data)
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Warn, zapcore.WarnLevel, msg, data)
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Error, zapcore.ErrorLevel, msg, data)
}

func (l *GormLogger) printf(ctx context.Context, min gormlogger.LogLevel, lvl zapcore.Level, msg string, data []any) {
	if l.level < min {
		return
	}
	l.forContext(ctx).Sugar().Logf(lvl, msg, data...)
}

// Trace logs one statement. Failed statements go out at error, slow ones at
// warn and everything else at debug when the level is Info.
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)

	lvl, msg, ok := l.classify(elapsed, err)
	if !ok {
		return
	}

	sql, rows := fc()
	fields := append(requestFields(ctx),
		zap.Duration("elapsed", elapsed),
		zap.Int64("rows", rows),
		zap.String("sql", l.clip(sql)),
	)
	if lvl == zapcore.ErrorLevel {
		fields = append(fields, zap.Error(err))
	}
	if ce := l.forContext(ctx).Check(lvl, msg); ce != nil {
		ce.Write(fields...)
	}
}

func (l *GormLogger) classify(elapsed time.Duration, err error) (zapcore.Level, string, bool) {
	switch {
	case err != nil && l.level >= gormlogger.Error:
		if !l.notFound && errors.Is(err, gormlogger.ErrRecordNotFound) {
			return 0, "", false
		}
		return zapcore.ErrorLevel, "SQL Error", true
	case l.slow > 0 && elapsed > l.slow && l.level >= gormlogger.Warn:
		return zapcore.WarnLevel, "SLOW SQL >= " + l.slow.String(), true
	case l.level >= gormlogger.Info:
		return zapcore.DebugLevel, "SQL Query", true
	}
	return 0, "", false
}

func (l *GormLogger) clip(sql string) string {
	if l.fullSQL || len(sql) <= maxLoggedSQL {
		return sql
	}
	return sql[:maxLoggedSQL] + "...(truncated)"
}

func (l *GormLogger) forContext(ctx context.Context) *zap.Logger {
	if l.withTrace {
		return WithTraceContext(ctx, l.zl)
	}
	return l.zl
}

// MapGormLogLevel converts the service log level into a GORM level. Debug and
// info both enable statement logging; anything unknown falls back to Warn.
func MapGormLogLevel(level string) gormlogger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return gormlogger.Silent
	case "error", "fatal":
		return gormlogger.Error
	case "debug", "info":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}
