// Package config loads payroll-refactor settings from defaults, an optional
// YAML file and PAYROLL_REFACTOR_* environment variables.
package config

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/dustin/go-humanize"

	"github.com/samuelghellereTR/payroll-refactor-tool/pkg/naming"
	"github.com/samuelghellereTR/payroll-refactor-tool/pkg/observability"
	"github.com/samuelghellereTR/payroll-refactor-tool/pkg/rewrite"
)

// Sentinel validation errors.
var (
	ErrInvalidWorkers     = errors.New("run.workers must not be negative")
	ErrInvalidExtension   = errors.New("run.extensions entries must start with a dot")
	ErrInvalidMaxFileSize = errors.New("invalid run.max_file_size")
	ErrInvalidLogFormat   = errors.New("logging.format must be text or json")
	ErrInvalidSampleRatio = errors.New("telemetry.sample_ratio must be between 0 and 1")
)

// Config is the complete tool configuration.
type Config struct {
	Rewrite   RewriteConfig   `mapstructure:"rewrite"`
	Naming    NamingConfig    `mapstructure:"naming"`
	Run       RunConfig       `mapstructure:"run"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// TypeReplacement maps a legacy type to its standard equivalent. It is a
// list entry rather than a map key because viper folds keys to lower case.
type TypeReplacement struct {
	Legacy   string `mapstructure:"legacy"`
	Standard string `mapstructure:"standard"`
}

// RewriteConfig configures the rule catalog.
type RewriteConfig struct {
	DefaultScale      int               `mapstructure:"default_scale"`
	RoundingMode      string            `mapstructure:"rounding_mode"`
	Wrappers          rewrite.Wrappers  `mapstructure:"wrappers"`
	HelperReceivers   []string          `mapstructure:"helper_receivers"`
	IdentityConstants []string          `mapstructure:"identity_constants"`
	TypeReplacements  []TypeReplacement `mapstructure:"type_replacements"`
	Rename            bool              `mapstructure:"rename"`
}

// NamingConfig extends the built-in vocabulary.
type NamingConfig struct {
	// VocabularyFile is a YAML file with terms, methods and prefixes.
	VocabularyFile string            `mapstructure:"vocabulary_file"`
	Terms          map[string]string `mapstructure:"terms"`
	Methods        map[string]string `mapstructure:"methods"`
}

// RunConfig configures file discovery and persistence.
type RunConfig struct {
	Workers          int      `mapstructure:"workers"`
	Output           string   `mapstructure:"output"`
	Backup           bool     `mapstructure:"backup"`
	CompressBackup   bool     `mapstructure:"compress_backup"`
	DryRun           bool     `mapstructure:"dry_run"`
	Extensions       []string `mapstructure:"extensions"`
	RespectGitignore bool     `mapstructure:"respect_gitignore"`
	MaxFileSize      string   `mapstructure:"max_file_size"`
}

// LoggingConfig configures the slog handler.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TelemetryConfig configures OpenTelemetry export.
type TelemetryConfig struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	OTLPHeaders  string  `mapstructure:"otlp_headers"`
	OTLPInsecure bool    `mapstructure:"otlp_insecure"`
	MetricsFile  string  `mapstructure:"metrics_file"`
	Environment  string  `mapstructure:"environment"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
	TraceVerbose bool    `mapstructure:"trace_verbose"`
}

// Validate checks cross-field constraints the rewrite options do not cover.
func (c *Config) Validate() error {
	if c.Run.Workers < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidWorkers, c.Run.Workers)
	}

	for _, ext := range c.Run.Extensions {
		if len(ext) < 2 || ext[0] != '.' {
			return fmt.Errorf("%w: %q", ErrInvalidExtension, ext)
		}
	}

	if _, err := c.Run.MaxFileSizeBytes(); err != nil {
		return err
	}

	if _, err := observability.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}

	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, c.Logging.Format)
	}

	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidSampleRatio, c.Telemetry.SampleRatio)
	}

	if err := c.RewriteOptions().Validate(); err != nil {
		return fmt.Errorf("rewrite: %w", err)
	}

	return nil
}

// MaxFileSizeBytes parses MaxFileSize ("2MB", "512KiB"). Zero means no
// limit.
func (r RunConfig) MaxFileSizeBytes() (uint64, error) {
	if r.MaxFileSize == "" || r.MaxFileSize == "0" {
		return 0, nil
	}

	n, err := humanize.ParseBytes(r.MaxFileSize)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %w", ErrInvalidMaxFileSize, r.MaxFileSize, err)
	}

	return n, nil
}

// RewriteOptions converts the rewrite section to engine options.
func (c *Config) RewriteOptions() rewrite.Options {
	opts := rewrite.Options{
		DefaultScale:      c.Rewrite.DefaultScale,
		RoundingMode:      c.Rewrite.RoundingMode,
		Wrappers:          c.Rewrite.Wrappers,
		HelperReceivers:   slices.Clone(c.Rewrite.HelperReceivers),
		IdentityConstants: slices.Clone(c.Rewrite.IdentityConstants),
		TypeReplacements:  make(map[string]string, len(c.Rewrite.TypeReplacements)),
		Rename:            c.Rewrite.Rename,
	}

	for _, tr := range c.Rewrite.TypeReplacements {
		opts.TypeReplacements[tr.Legacy] = tr.Standard
	}

	return opts
}

// TranslatorConfig merges the built-in tables, the vocabulary file and the
// inline terms and methods, later sources winning. Vocabulary prefixes take
// priority over the built-in ones.
func (c *Config) TranslatorConfig() (naming.Config, error) {
	cfg := naming.DefaultConfig()

	if c.Naming.VocabularyFile != "" {
		vocab, err := LoadVocabulary(c.Naming.VocabularyFile)
		if err != nil {
			return naming.Config{}, err
		}

		rules, err := vocab.PrefixRules()
		if err != nil {
			return naming.Config{}, err
		}

		maps.Copy(cfg.Terms, vocab.Terms)
		maps.Copy(cfg.Methods, vocab.Methods)
		cfg.Prefixes = append(rules, cfg.Prefixes...)
	}

	maps.Copy(cfg.Terms, c.Naming.Terms)
	maps.Copy(cfg.Methods, c.Naming.Methods)

	return cfg, nil
}

// ObservabilityConfig converts the logging and telemetry sections.
func (c *Config) ObservabilityConfig(mode observability.AppMode, version string) observability.Config {
	cfg := observability.DefaultConfig()
	cfg.Mode = mode
	cfg.ServiceVersion = version
	cfg.Environment = c.Telemetry.Environment
	cfg.OTLPEndpoint = c.Telemetry.OTLPEndpoint
	cfg.OTLPHeaders = observability.ParseOTLPHeaders(c.Telemetry.OTLPHeaders)
	cfg.OTLPInsecure = c.Telemetry.OTLPInsecure
	cfg.MetricsFile = c.Telemetry.MetricsFile
	cfg.SampleRatio = c.Telemetry.SampleRatio
	cfg.TraceVerbose = c.Telemetry.TraceVerbose
	cfg.LogJSON = c.Logging.Format == "json"
	cfg.LogLevel, _ = observability.ParseLevel(c.Logging.Level) //nolint:errcheck // checked by Validate

	return cfg
}
