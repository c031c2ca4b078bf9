package telemetry

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumOf(t *testing.T, m metricdata.Metrics) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "%s is not an int64 sum", m.Name)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func newTestMetrics(t *testing.T) (*ClosetMetrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := NewClosetMetrics(provider.Meter("closet-test"))
	require.NoError(t, err)
	return m, reader
}

func TestClosetMetrics_Record(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordUpload(ctx, "image/png", 2048, true)
	m.RecordUpload(ctx, "image/jpeg", 1024, false)
	m.RecordBackgroundRemoval(ctx, 1200*time.Millisecond, nil)
	m.RecordBackgroundRemoval(ctx, 300*time.Millisecond, errors.New("402"))
	m.RecordCredits(ctx, 2)
	m.RecordCredits(ctx, -1)
	m.RecordCredits(ctx, 0)
	m.RecordSweep(ctx, "deleted")
	m.RecordSweep(ctx, "kept")
	m.RecordOutfitPreview(ctx)

	got := collect(t, reader)
	assert.Equal(t, int64(2), sumOf(t, got["closet_item_uploads_total"]))
	assert.Equal(t, int64(2), sumOf(t, got["closet_background_removals_total"]))
	assert.Equal(t, int64(2), sumOf(t, got["closet_credits_consumed_total"]))
	assert.Equal(t, int64(1), sumOf(t, got["closet_credits_refunded_total"]))
	assert.Equal(t, int64(2), sumOf(t, got["closet_storage_swept_objects_total"]))
	assert.Equal(t, int64(1), sumOf(t, got["closet_outfit_previews_total"]))

	hist, ok := got["closet_background_removal_duration_seconds"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	var count uint64
	for _, dp := range hist.DataPoints {
		count += dp.Count
	}
	assert.Equal(t, uint64(2), count)
}

func TestClosetMetrics_NilIsSafe(t *testing.T) {
	var m *ClosetMetrics
	ctx := context.Background()
	assert.NotPanics(t, func() {
		m.RecordUpload(ctx, "image/png", 1, false)
		m.RecordBackgroundRemoval(ctx, time.Second, nil)
		m.RecordCredits(ctx, 1)
		m.RecordSweep(ctx, "kept")
		m.RecordOutfitPreview(ctx)
	})
}

func TestRegisterDBPoolMetrics(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	var sqlDB *sql.DB
	sqlDB, err = db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(3)
	t.Cleanup(func() { _ = sqlDB.Close() })

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	reg, err := RegisterDBPoolMetrics(provider.Meter("closet-test"), sqlDB)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reg.Unregister() })

	got := collect(t, reader)
	gauge, ok := got["db_pool_connections_max"].Data.(metricdata.Gauge[int64])
	require.True(t, ok)
	require.Len(t, gauge.DataPoints, 1)
	assert.Equal(t, int64(3), gauge.DataPoints[0].Value)
	assert.Contains(t, got, "db_pool_connections")
}
