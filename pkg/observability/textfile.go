package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Textfile exports OTel instruments in the Prometheus text format to a file,
// for node_exporter's textfile collector in batch jobs. Each Textfile owns
// its registry so repeated runs in one process do not collide.
type Textfile struct {
	path     string
	registry *prometheus.Registry
	reader   sdkmetric.Reader
}

// NewTextfile creates an exporter that writes to path.
func NewTextfile(path string) (*Textfile, error) {
	registry := prometheus.NewRegistry()

	exporter, err := promexporter.New(promexporter.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	return &Textfile{path: path, registry: registry, reader: exporter}, nil
}

// Reader returns the metric reader to attach to a MeterProvider.
func (t *Textfile) Reader() sdkmetric.Reader {
	return t.reader
}

// Path returns the output file.
func (t *Textfile) Path() string {
	return t.path
}

// Write gathers the current values and atomically replaces the file.
func (t *Textfile) Write() error {
	if err := prometheus.WriteToTextfile(t.path, t.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}

	return nil
}
