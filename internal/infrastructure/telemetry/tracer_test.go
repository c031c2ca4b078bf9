package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap/zaptest"
)

// useRecorder installs a recording global tracer provider for the test
func useRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	t.Cleanup(func() { otel.SetTracerProvider(previous) })
	return recorder
}

func TestProviders_DisabledAreNoOps(t *testing.T) {
	ctx := context.Background()
	logger := zaptest.NewLogger(t)
	cfg := config.TelemetryConfig{ServiceName: "closet-test", CollectorEndpoint: "localhost:4317"}

	tp, err := NewTracerProvider(ctx, cfg, logger)
	require.NoError(t, err)
	assert.False(t, tp.IsEnabled())
	assert.NotNil(t, tp.Tracer("x"))
	tp.EnableSpanProfiles()
	assert.False(t, tp.IsSpanProfilesEnabled())
	assert.NoError(t, tp.Shutdown(ctx))

	mp, err := NewMeterProvider(ctx, cfg, logger)
	require.NoError(t, err)
	assert.False(t, mp.IsEnabled())
	assert.NotNil(t, mp.Meter("x"))
	assert.NoError(t, mp.Shutdown(ctx))

	lp, err := NewLoggerProvider(ctx, cfg, logger)
	require.NoError(t, err)
	assert.False(t, lp.IsEnabled())
	assert.NoError(t, lp.Shutdown(ctx))

	p, err := NewProfiler(cfg, logger)
	require.NoError(t, err)
	assert.False(t, p.IsEnabled())
	assert.NoError(t, p.Stop())
	assert.NoError(t, p.Stop())
}

func TestNewProfiler_RequiresAddress(t *testing.T) {
	_, err := NewProfiler(config.TelemetryConfig{ProfilingEnabled: true, ServiceName: "closet"}, zaptest.NewLogger(t))
	assert.Error(t, err)
}

func TestSamplerFor(t *testing.T) {
	assert.Contains(t, samplerFor(1).Description(), "AlwaysOnSampler")
	assert.Contains(t, samplerFor(0).Description(), "AlwaysOffSampler")
	assert.Contains(t, samplerFor(0.25).Description(), "TraceIDRatioBased{0.25}")
}

func TestNewResource(t *testing.T) {
	res, err := newResource("closet-api")
	require.NoError(t, err)

	value, ok := res.Set().Value(attribute.Key("service.name"))
	require.True(t, ok)
	assert.Equal(t, "closet-api", value.AsString())

	version, ok := res.Set().Value(attribute.Key("service.version"))
	require.True(t, ok)
	assert.Equal(t, ServiceVersion, version.AsString())
}

func TestGrpcOptions(t *testing.T) {
	endpoint := func(s string) string { return "endpoint=" + s }
	insecure := func() string { return "insecure" }

	cfg := config.TelemetryConfig{CollectorEndpoint: "otel:4317"}
	assert.Equal(t, []string{"endpoint=otel:4317"}, grpcOptions(cfg, endpoint, insecure))

	cfg.Insecure = true
	assert.Equal(t, []string{"endpoint=otel:4317", "insecure"}, grpcOptions(cfg, endpoint, insecure))
}

func TestPipeline_Shutdown(t *testing.T) {
	var calls int
	p := &pipeline{signal: "traces", logger: zaptest.NewLogger(t), shutdown: func(ctx context.Context) error {
		calls++
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		return errors.New("collector gone")
	}}

	assert.True(t, p.IsEnabled())
	err := p.Shutdown(context.Background())
	assert.ErrorContains(t, err, "shutdown traces export")
	assert.Equal(t, 1, calls)

	assert.NoError(t, (&pipeline{}).Shutdown(context.Background()))
}

func TestStartServiceSpan(t *testing.T) {
	recorder := useRecorder(t)

	ctx, span := StartServiceSpan(context.Background(), "item", "upload", attribute.String(SpanAttrClientID, "c-1"))
	assert.NotEmpty(t, GetTraceID(ctx))
	RecordError(span, errors.New("storage down"))
	RecordError(span, nil)
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "item.upload", spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Contains(t, spans[0].Attributes(), attribute.String(SpanAttrClientID, "c-1"))
	assert.Len(t, spans[0].Events(), 1)
}

func TestGetTraceID_NoSpan(t *testing.T) {
	assert.Empty(t, GetTraceID(context.Background()))
}
