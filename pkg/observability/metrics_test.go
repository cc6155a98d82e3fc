package observability_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/samuelghellereTR/payroll-refactor-tool/pkg/observability"
)

func setupTestMeter(t *testing.T) (*observability.RefactorMetrics, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	m, err := observability.NewRefactorMetrics(mp.Meter("test"))
	require.NoError(t, err)

	return m, reader
}

func findMetric(t *testing.T, reader *sdkmetric.ManualReader, name string) *metricdata.Metrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	for i := range rm.ScopeMetrics {
		for j := range rm.ScopeMetrics[i].Metrics {
			if rm.ScopeMetrics[i].Metrics[j].Name == name {
				return &rm.ScopeMetrics[i].Metrics[j]
			}
		}
	}

	return nil
}

func sumOf(t *testing.T, m *metricdata.Metrics) int64 {
	t.Helper()
	require.NotNil(t, m)

	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok)

	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}

	return total
}

func TestRefactorMetrics_RecordFile(t *testing.T) {
	t.Parallel()

	m, reader := setupTestMeter(t)
	ctx := context.Background()

	m.RecordFile(ctx, observability.FileOutcome{
		State:           "persisted",
		Transformations: map[string]int{"math": 2, "boolean": 1},
		Warnings:        1,
		Duration:        3 * time.Millisecond,
	})
	m.RecordFile(ctx, observability.FileOutcome{State: "parse_failed", ParseFailed: true})

	assert.Equal(t, int64(2), sumOf(t, findMetric(t, reader, "payroll_refactor.files.total")))
	assert.Equal(t, int64(3), sumOf(t, findMetric(t, reader, "payroll_refactor.transformations.total")))
	assert.Equal(t, int64(1), sumOf(t, findMetric(t, reader, "payroll_refactor.warnings.total")))
	assert.Equal(t, int64(1), sumOf(t, findMetric(t, reader, "payroll_refactor.parse_failures.total")))

	hist := findMetric(t, reader, "payroll_refactor.file.duration.seconds")
	require.NotNil(t, hist)

	data, ok := hist.Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, data.DataPoints, 1)
	assert.Equal(t, uint64(2), data.DataPoints[0].Count)
}

func TestRefactorMetrics_TrackInflight(t *testing.T) {
	t.Parallel()

	m, reader := setupTestMeter(t)
	ctx := context.Background()

	done := m.TrackInflight(ctx)
	assert.Equal(t, int64(1), sumOf(t, findMetric(t, reader, "payroll_refactor.inflight.files")))

	done()
	assert.Equal(t, int64(0), sumOf(t, findMetric(t, reader, "payroll_refactor.inflight.files")))
}

func TestRefactorMetrics_NilReceiver(t *testing.T) {
	t.Parallel()

	var m *observability.RefactorMetrics

	assert.NotPanics(t, func() {
		m.RecordFile(context.Background(), observability.FileOutcome{State: "unchanged"})
		m.TrackInflight(context.Background())()
	})
}

func TestTextfile_Write(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "payroll.prom")

	tf, err := observability.NewTextfile(path)
	require.NoError(t, err)
	assert.Equal(t, path, tf.Path())

	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(tf.Reader()))

	m, err := observability.NewRefactorMetrics(mp.Meter("test"))
	require.NoError(t, err)

	m.RecordFile(context.Background(), observability.FileOutcome{State: "persisted"})

	require.NoError(t, tf.Write())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "payroll_refactor_files")
	assert.Contains(t, string(data), `state="persisted"`)
}
