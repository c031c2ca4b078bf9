package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type ctxKey int

const (
	loggerCtxKey ctxKey = iota
	requestIDCtxKey
	clientIDCtxKey
)

// Field names shared by every request-scoped log line.
const (
	FieldRequestID = "request_id"
	FieldClientID  = "client_id"
)

// WithContext stores logger in ctx.
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerCtxKey, logger)
}

// FromContext returns the logger stored in ctx or a no-op logger.
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerCtxKey).(*zap.Logger); ok && l != nil {
		return l
	}
	return zap.NewNop()
}

// WithRequestID records the request id in ctx and on the logger stored there.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return tag(ctx, requestIDCtxKey, FieldRequestID, requestID)
}

// WithClientID records the authenticated client in ctx and on the logger stored there.
func WithClientID(ctx context.Context, clientID string) context.Context {
	return tag(ctx, clientIDCtxKey, FieldClientID, clientID)
}

func tag(ctx context.Context, key ctxKey, field, value string) context.Context {
	if value == "" {
		return ctx
	}
	ctx = context.WithValue(ctx, key, value)
	return WithContext(ctx, FromContext(ctx).With(zap.String(field, value)))
}

// RequestID returns the request id recorded by WithRequestID.
func RequestID(ctx context.Context) string {
	s, _ := ctx.Value(requestIDCtxKey).(string)
	return s
}

// ClientID returns the client id recorded by WithClientID.
func ClientID(ctx context.Context) string {
	s, _ := ctx.Value(clientIDCtxKey).(string)
	return s
}

// WithTraceContext adds trace_id and span_id when ctx carries a valid span.
func WithTraceContext(ctx context.Context, logger *zap.Logger) *zap.Logger {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return logger
	}
	return logger.With(
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	)
}

// L is the logger services should use inside a request:
//
//	logger.L(ctx).Info("item uploaded", zap.String("item_id", id))
func L(ctx context.Context) *zap.Logger {
	return WithTraceContext(ctx, FromContext(ctx))
}

// requestFields returns the request and client ids held by ctx as zap fields.
func requestFields(ctx context.Context) []zap.Field {
	var fields []zap.Field
	if id := RequestID(ctx); id != "" {
		fields = append(fields, zap.String(FieldRequestID, id))
	}
	if id := ClientID(ctx); id != "" {
		fields = append(fields, zap.String(FieldClientID, id))
	}
	return fields
}
