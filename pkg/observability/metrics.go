package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricFilesTotal           = "payroll_refactor.files.total"
	metricTransformationsTotal = "payroll_refactor.transformations.total"
	metricWarningsTotal        = "payroll_refactor.warnings.total"
	metricParseFailuresTotal   = "payroll_refactor.parse_failures.total"
	metricFileDuration         = "payroll_refactor.file.duration.seconds"
	metricInflightFiles        = "payroll_refactor.inflight.files"

	attrState    = "state"
	attrCategory = "category"
)

// fileBucketBoundaries covers sub-millisecond files up to very large
// generated units.
var fileBucketBoundaries = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// FileOutcome is what one processed file contributes to the metrics.
type FileOutcome struct {
	// State is the final processing state, e.g. "persisted".
	State string
	// Transformations counts applied rewrites per category name.
	Transformations map[string]int
	Warnings        int
	ParseFailed     bool
	Duration        time.Duration
}

// RefactorMetrics holds the instruments of a rewrite run.
type RefactorMetrics struct {
	files           metric.Int64Counter
	transformations metric.Int64Counter
	warnings        metric.Int64Counter
	parseFailures   metric.Int64Counter
	fileDuration    metric.Float64Histogram
	inflight        metric.Int64UpDownCounter
}

// NewRefactorMetrics creates the run instruments from mt.
func NewRefactorMetrics(mt metric.Meter) (*RefactorMetrics, error) {
	b := &metricBuilder{meter: mt}

	m := &RefactorMetrics{
		files:           b.counter(metricFilesTotal, "Files visited by final state", "{file}"),
		transformations: b.counter(metricTransformationsTotal, "Applied transformations by category", "{transformation}"),
		warnings:        b.counter(metricWarningsTotal, "Skipped rewrites and other warnings", "{warning}"),
		parseFailures:   b.counter(metricParseFailuresTotal, "Files that did not parse", "{file}"),
		fileDuration:    b.histogram(metricFileDuration, "Per-file processing duration", "s", fileBucketBoundaries...),
		inflight:        b.upDownCounter(metricInflightFiles, "Files being processed", "{file}"),
	}

	if b.err != nil {
		return nil, b.err
	}

	return m, nil
}

// RecordFile records one finished file. Safe on a nil receiver.
func (m *RefactorMetrics) RecordFile(ctx context.Context, out FileOutcome) {
	if m == nil {
		return
	}

	m.files.Add(ctx, 1, metric.WithAttributes(attribute.String(attrState, out.State)))
	m.fileDuration.Record(ctx, out.Duration.Seconds())

	for cat, n := range out.Transformations {
		m.transformations.Add(ctx, int64(n), metric.WithAttributes(attribute.String(attrCategory, cat)))
	}

	if out.Warnings > 0 {
		m.warnings.Add(ctx, int64(out.Warnings))
	}

	if out.ParseFailed {
		m.parseFailures.Add(ctx, 1)
	}
}

// TrackInflight increments the in-flight counter and returns its decrement.
// Safe on a nil receiver.
func (m *RefactorMetrics) TrackInflight(ctx context.Context) func() {
	if m == nil {
		return func() {}
	}

	m.inflight.Add(ctx, 1)

	return func() { m.inflight.Add(ctx, -1) }
}
