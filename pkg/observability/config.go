// Package observability wires OpenTelemetry tracing, metrics and structured
// logging for every payroll-refactor entry point (CLI, MCP, LSP).
package observability

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// AppMode identifies how the binary was launched.
type AppMode string

const (
	// ModeCLI is a one-shot command run.
	ModeCLI AppMode = "cli"
	// ModeMCP is the MCP stdio server.
	ModeMCP AppMode = "mcp"
	// ModeLSP is the language server.
	ModeLSP AppMode = "lsp"
)

const (
	defaultServiceName        = "payroll-refactor"
	defaultShutdownTimeoutSec = 5
)

// ErrUnknownLogLevel is returned by ParseLevel for unrecognized names.
var ErrUnknownLogLevel = errors.New("unknown log level")

// Config holds all observability settings.
type Config struct {
	// ServiceName is the OTel resource service name.
	ServiceName    string
	ServiceVersion string
	// Environment is the deployment environment, e.g. "ci" or "dev".
	Environment string
	Mode        AppMode

	// OTLPEndpoint is the OTLP gRPC collector address. Empty disables
	// export.
	OTLPEndpoint string
	OTLPHeaders  map[string]string
	OTLPInsecure bool

	// MetricsFile is a Prometheus textfile written on shutdown. Empty
	// disables it.
	MetricsFile string

	// SampleRatio is the trace sampling ratio. Zero samples everything.
	SampleRatio float64
	// TraceVerbose keeps one span per processed file.
	TraceVerbose bool

	LogLevel slog.Level
	LogJSON  bool

	ShutdownTimeoutSec int
}

// DefaultConfig returns a zero-export configuration logging text at info.
func DefaultConfig() Config {
	return Config{
		ServiceName:        defaultServiceName,
		Mode:               ModeCLI,
		LogLevel:           slog.LevelInfo,
		ShutdownTimeoutSec: defaultShutdownTimeoutSec,
	}
}

// ParseLevel maps "debug", "info", "warn" or "error" to a slog level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}

	return slog.LevelInfo, fmt.Errorf("%w: %q", ErrUnknownLogLevel, name)
}
