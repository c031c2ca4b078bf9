// Package telemetry wires OpenTelemetry traces, metrics and logs plus Pyroscope profiling.
// Every provider degrades to a no-op when its feature is disabled.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/ZThygesen/inspired-virtual-closet-sub001/internal/infrastructure/config"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.uber.org/zap"
)

// ServiceVersion is reported on every exported signal. The server sets it
// from its build version before creating providers.
var ServiceVersion = "dev"

const shutdownTimeout = 10 * time.Second

func newResource(serviceName string) (*resource.Resource, error) {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(ServiceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry resource: %w", err)
	}
	return res, nil
}

// grpcOptions builds the endpoint options shared by the three OTLP gRPC
// exporters, each of which has its own option type.
func grpcOptions[O any](cfg config.TelemetryConfig, endpoint func(string) O, insecure func() O) []O {
	opts := []O{endpoint(cfg.CollectorEndpoint)}
	if cfg.Insecure {
		opts = append(opts, insecure())
	}
	return opts
}

// pipeline is the lifecycle shared by the exporting providers. A pipeline
// without a shutdown func is disabled.
type pipeline struct {
	signal   string
	logger   *zap.Logger
	shutdown func(context.Context) error
}

// IsEnabled reports whether the signal is being exported.
func (p *pipeline) IsEnabled() bool {
	return p != nil && p.shutdown != nil
}

// Shutdown flushes pending data, waiting at most shutdownTimeout.
func (p *pipeline) Shutdown(ctx context.Context) error {
	if !p.IsEnabled() {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := p.shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown %s export: %w", p.signal, err)
	}
	p.logger.Info("Telemetry export stopped", zap.String("signal", p.signal))
	return nil
}

func (p *pipeline) started(cfg config.TelemetryConfig, fields ...zap.Field) {
	p.logger.Info("Telemetry export started", append([]zap.Field{
		zap.String("signal", p.signal),
		zap.String("collector_endpoint", cfg.CollectorEndpoint),
		zap.String("service_version", ServiceVersion),
	}, fields...)...)
}
