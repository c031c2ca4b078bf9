package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/infrastructure/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"
)

// MeterProvider exports closet metrics over OTLP on a fixed interval.
type MeterProvider struct {
	pipeline
	provider *sdkmetric.MeterProvider
}

// NewMeterProvider returns a disabled provider unless cfg.MetricsEnabled is set.
func NewMeterProvider(ctx context.Context, cfg config.TelemetryConfig, logger *zap.Logger) (*MeterProvider, error) {
	mp := &MeterProvider{pipeline: pipeline{signal: "metrics", logger: logger}}
	if !cfg.MetricsEnabled {
		return mp, nil
	}

	exporter, err := otlpmetricgrpc.New(ctx, grpcOptions(cfg, otlpmetricgrpc.WithEndpoint, otlpmetricgrpc.WithInsecure)...)
	if err != nil {
		return nil, fmt.Errorf("otlp metric exporter: %w", err)
	}
	res, err := newResource(cfg.ServiceName)
	if err != nil {
		return nil, err
	}

	interval := cfg.MetricsInterval
	if interval <= 0 {
		interval = time.Minute
	}
	mp.provider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))),
	)
	mp.shutdown = mp.provider.Shutdown
	otel.SetMeterProvider(mp.provider)

	mp.started(cfg, zap.Duration("export_interval", interval))
	return mp, nil
}

// Meter returns a meter from this provider, or from the global one when disabled.
func (mp *MeterProvider) Meter(name string, opts ...metric.MeterOption) metric.Meter {
	if mp.provider == nil {
		return otel.GetMeterProvider().Meter(name, opts...)
	}
	return mp.provider.Meter(name, opts...)
}

// Common metric attribute keys
var (
	AttrOutcome       = attribute.Key("outcome")
	AttrBgRemoved     = attribute.Key("background_removed")
	AttrContentType   = attribute.Key("content_type")
	AttrSweepDecision = attribute.Key("decision")
)

// Outcome values for AttrOutcome
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Bucket boundaries in seconds
var (
	ProviderDurationBuckets = []float64{0.25, 0.5, 1, 2, 4, 8, 15, 30}
	UploadSizeBuckets       = []float64{64 << 10, 256 << 10, 1 << 20, 4 << 20, 10 << 20, 20 << 20}
)
