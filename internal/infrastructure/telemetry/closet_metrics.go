package telemetry

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ClosetMetrics holds the instruments recorded by the closet services.
// A nil *ClosetMetrics records nothing.
type ClosetMetrics struct {
	uploads          metric.Int64Counter
	uploadBytes      metric.Int64Histogram
	bgRemovals       metric.Int64Counter
	bgDuration       metric.Float64Histogram
	creditsConsumed  metric.Int64Counter
	creditsRefunded  metric.Int64Counter
	sweptObjects     metric.Int64Counter
	outfitsPreviewed metric.Int64Counter
}

// NewClosetMetrics creates all closet instruments on meter
func NewClosetMetrics(meter metric.Meter) (*ClosetMetrics, error) {
	m := &ClosetMetrics{}
	var err error

	if m.uploads, err = meter.Int64Counter("closet_item_uploads_total",
		metric.WithDescription("Closet images uploaded"), metric.WithUnit("{upload}")); err != nil {
		return nil, instrumentErr("closet_item_uploads_total", err)
	}
	if m.uploadBytes, err = meter.Int64Histogram("closet_item_upload_bytes",
		metric.WithDescription("Size of uploaded closet images"), metric.WithUnit("By"),
		metric.WithExplicitBucketBoundaries(UploadSizeBuckets...)); err != nil {
		return nil, instrumentErr("closet_item_upload_bytes", err)
	}
	if m.bgRemovals, err = meter.Int64Counter("closet_background_removals_total",
		metric.WithDescription("Background removal provider calls"), metric.WithUnit("{call}")); err != nil {
		return nil, instrumentErr("closet_background_removals_total", err)
	}
	if m.bgDuration, err = meter.Float64Histogram("closet_background_removal_duration_seconds",
		metric.WithDescription("Background removal provider latency"), metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(ProviderDurationBuckets...)); err != nil {
		return nil, instrumentErr("closet_background_removal_duration_seconds", err)
	}
	if m.creditsConsumed, err = meter.Int64Counter("closet_credits_consumed_total",
		metric.WithDescription("Credits charged for background removal"), metric.WithUnit("{credit}")); err != nil {
		return nil, instrumentErr("closet_credits_consumed_total", err)
	}
	if m.creditsRefunded, err = meter.Int64Counter("closet_credits_refunded_total",
		metric.WithDescription("Credits returned after a failed removal"), metric.WithUnit("{credit}")); err != nil {
		return nil, instrumentErr("closet_credits_refunded_total", err)
	}
	if m.sweptObjects, err = meter.Int64Counter("closet_storage_swept_objects_total",
		metric.WithDescription("Objects inspected by the orphan sweeper"), metric.WithUnit("{object}")); err != nil {
		return nil, instrumentErr("closet_storage_swept_objects_total", err)
	}
	if m.outfitsPreviewed, err = meter.Int64Counter("closet_outfit_previews_total",
		metric.WithDescription("Outfit preview images stored"), metric.WithUnit("{preview}")); err != nil {
		return nil, instrumentErr("closet_outfit_previews_total", err)
	}
	return m, nil
}

func instrumentErr(name string, err error) error {
	return fmt.Errorf("failed to create instrument %s: %w", name, err)
}

// RecordUpload counts a stored item
func (m *ClosetMetrics) RecordUpload(ctx context.Context, contentType string, size int64, bgRemoved bool) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(AttrContentType.String(contentType), AttrBgRemoved.Bool(bgRemoved))
	m.uploads.Add(ctx, 1, attrs)
	m.uploadBytes.Record(ctx, size, attrs)
}

// RecordBackgroundRemoval records one provider call
func (m *ClosetMetrics) RecordBackgroundRemoval(ctx context.Context, d time.Duration, err error) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(outcome(err))
	m.bgRemovals.Add(ctx, 1, attrs)
	m.bgDuration.Record(ctx, d.Seconds(), attrs)
}

// RecordCredits records credits charged (positive) or refunded (negative)
func (m *ClosetMetrics) RecordCredits(ctx context.Context, delta int) {
	if m == nil || delta == 0 {
		return
	}
	if delta > 0 {
		m.creditsConsumed.Add(ctx, int64(delta))
		return
	}
	m.creditsRefunded.Add(ctx, int64(-delta))
}

// RecordSweep counts one sweeper decision ("kept", "deleted", "failed")
func (m *ClosetMetrics) RecordSweep(ctx context.Context, decision string) {
	if m == nil {
		return
	}
	m.sweptObjects.Add(ctx, 1, metric.WithAttributes(AttrSweepDecision.String(decision)))
}

// RecordOutfitPreview counts a stored outfit preview
func (m *ClosetMetrics) RecordOutfitPreview(ctx context.Context) {
	if m == nil {
		return
	}
	m.outfitsPreviewed.Add(ctx, 1)
}

func outcome(err error) attribute.KeyValue {
	if err != nil {
		return AttrOutcome.String(OutcomeFailure)
	}
	return AttrOutcome.String(OutcomeSuccess)
}

// RegisterDBPoolMetrics reports connection pool statistics on every collection
func RegisterDBPoolMetrics(meter metric.Meter, db *sql.DB) (metric.Registration, error) {
	open, err := meter.Int64ObservableGauge("db_pool_connections",
		metric.WithDescription("Connections in the pool by state"), metric.WithUnit("{connection}"))
	if err != nil {
		return nil, instrumentErr("db_pool_connections", err)
	}
	maxOpen, err := meter.Int64ObservableGauge("db_pool_connections_max",
		metric.WithDescription("Maximum open connections"), metric.WithUnit("{connection}"))
	if err != nil {
		return nil, instrumentErr("db_pool_connections_max", err)
	}
	waits, err := meter.Int64ObservableCounter("db_pool_wait_total",
		metric.WithDescription("Connections waited for"), metric.WithUnit("{wait}"))
	if err != nil {
		return nil, instrumentErr("db_pool_wait_total", err)
	}

	return meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		stats := db.Stats()
		o.ObserveInt64(open, int64(stats.InUse), metric.WithAttributes(attribute.String("state", "in_use")))
		o.ObserveInt64(open, int64(stats.Idle), metric.WithAttributes(attribute.String("state", "idle")))
		o.ObserveInt64(maxOpen, int64(stats.MaxOpenConnections))
		o.ObserveInt64(waits, stats.WaitCount)
		return nil
	}, open, maxOpen, waits)
}
