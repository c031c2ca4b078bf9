package telemetry

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/infrastructure/config"
	otelpyroscope "github.com/grafana/otel-profiling-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// samplerFor respects the caller's decision and samples root spans at ratio.
func samplerFor(ratio float64) sdktrace.Sampler {
	root := sdktrace.TraceIDRatioBased(ratio)
	switch {
	case ratio >= 1:
		root = sdktrace.AlwaysSample()
	case ratio <= 0:
		root = sdktrace.NeverSample()
	}
	return sdktrace.ParentBased(root)
}

// TracerProvider exports spans over OTLP and installs itself globally.
type TracerProvider struct {
	pipeline
	provider     *sdktrace.TracerProvider
	spanProfiles atomic.Bool
}

// NewTracerProvider returns a disabled provider unless cfg.Enabled is set.
func NewTracerProvider(ctx context.Context, cfg config.TelemetryConfig, logger *zap.Logger) (*TracerProvider, error) {
	tp := &TracerProvider{pipeline: pipeline{signal: "traces", logger: logger}}
	if !cfg.Enabled {
		return tp, nil
	}

	exporter, err := otlptracegrpc.New(ctx, grpcOptions(cfg, otlptracegrpc.WithEndpoint, otlptracegrpc.WithInsecure)...)
	if err != nil {
		return nil, fmt.Errorf("otlp trace exporter: %w", err)
	}
	res, err := newResource(cfg.ServiceName)
	if err != nil {
		return nil, err
	}

	tp.provider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(samplerFor(cfg.SamplingRatio)),
	)
	tp.shutdown = tp.provider.Shutdown
	otel.SetTracerProvider(tp.provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	tp.started(cfg, zap.Float64("sampling_ratio", cfg.SamplingRatio))
	return tp, nil
}

// EnableSpanProfiles links CPU profiles to span ids. Call it after the
// profiler has started; it is a no-op when tracing is disabled.
func (tp *TracerProvider) EnableSpanProfiles() {
	if tp.provider == nil || !tp.spanProfiles.CompareAndSwap(false, true) {
		return
	}
	otel.SetTracerProvider(otelpyroscope.NewTracerProvider(tp.provider))
	tp.logger.Info("Span profiles enabled")
}

func (tp *TracerProvider) IsSpanProfilesEnabled() bool {
	return tp.spanProfiles.Load()
}

// Tracer returns a tracer from this provider, or from the global one when disabled.
func (tp *TracerProvider) Tracer(name string, opts ...trace.TracerOption) trace.Tracer {
	if tp.provider == nil {
		return otel.GetTracerProvider().Tracer(name, opts...)
	}
	return tp.provider.Tracer(name, opts...)
}
