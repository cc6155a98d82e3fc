package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/samuelghellereTR/payroll-refactor-tool/pkg/rewrite"
)

const (
	configName = "payroll-refactor"
	configType = "yaml"
	envPrefix  = "PAYROLL_REFACTOR"
)

// Load reads configuration from defaults, the config file and the
// environment. An explicit path must exist; otherwise payroll-refactor.yaml
// is searched in ".", "./config" and the user config directory, and a
// missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()

	applyDefaults(v)

	v.SetConfigType(configType)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(".")
		v.AddConfigPath("./config")

		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, configName))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// Default returns the configuration Load produces with no file and no
// environment overrides.
func Default() *Config {
	v := viper.New()
	applyDefaults(v)

	var cfg Config

	_ = v.Unmarshal(&cfg) //nolint:errcheck // static defaults

	return &cfg
}

func applyDefaults(v *viper.Viper) {
	opts := rewrite.DefaultOptions()
	w := opts.Wrappers

	v.SetDefault("rewrite.default_scale", DefaultScale)
	v.SetDefault("rewrite.rounding_mode", DefaultRoundingMode)
	v.SetDefault("rewrite.rename", DefaultRename)
	v.SetDefault("rewrite.helper_receivers", []string{})
	v.SetDefault("rewrite.identity_constants", opts.IdentityConstants)
	v.SetDefault("rewrite.wrappers.precision", w.Precision)
	v.SetDefault("rewrite.wrappers.rescale", w.Rescale)
	v.SetDefault("rewrite.wrappers.add", w.Add)
	v.SetDefault("rewrite.wrappers.subtract", w.Subtract)
	v.SetDefault("rewrite.wrappers.multiply", w.Multiply)
	v.SetDefault("rewrite.wrappers.divide", w.Divide)
	v.SetDefault("rewrite.wrappers.truthy", w.Truthy)
	v.SetDefault("rewrite.wrappers.negate", w.Negate)
	v.SetDefault("rewrite.wrappers.equal", w.Equal)

	replacements := make([]map[string]any, 0, len(opts.TypeReplacements))
	for legacy, standard := range opts.TypeReplacements {
		replacements = append(replacements, map[string]any{"legacy": legacy, "standard": standard})
	}

	v.SetDefault("rewrite.type_replacements", replacements)

	v.SetDefault("naming.vocabulary_file", "")

	v.SetDefault("run.workers", DefaultWorkers)
	v.SetDefault("run.output", "")
	v.SetDefault("run.backup", DefaultBackup)
	v.SetDefault("run.compress_backup", DefaultCompressBackup)
	v.SetDefault("run.dry_run", DefaultDryRun)
	v.SetDefault("run.extensions", DefaultExtensions())
	v.SetDefault("run.respect_gitignore", DefaultRespectGitignore)
	v.SetDefault("run.max_file_size", DefaultMaxFileSize)

	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.format", DefaultLogFormat)

	v.SetDefault("telemetry.otlp_endpoint", "")
	v.SetDefault("telemetry.otlp_headers", "")
	v.SetDefault("telemetry.otlp_insecure", false)
	v.SetDefault("telemetry.metrics_file", "")
	v.SetDefault("telemetry.environment", "")
	v.SetDefault("telemetry.sample_ratio", 0.0)
	v.SetDefault("telemetry.trace_verbose", false)
}
