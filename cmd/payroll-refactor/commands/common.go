// Package commands implements the payroll-refactor CLI commands.
package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samuelghellereTR/payroll-refactor-tool/pkg/config"
	"github.com/samuelghellereTR/payroll-refactor-tool/pkg/cst"
	"github.com/samuelghellereTR/payroll-refactor-tool/pkg/naming"
	"github.com/samuelghellereTR/payroll-refactor-tool/pkg/observability"
	"github.com/samuelghellereTR/payroll-refactor-tool/pkg/rewrite"
	"github.com/samuelghellereTR/payroll-refactor-tool/pkg/version"
)

// GlobalOptions are the persistent root flags.
type GlobalOptions struct {
	ConfigPath string
	Verbose    bool
}

func (g *GlobalOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(g.ConfigPath)
	if err != nil {
		return nil, err
	}

	if g.Verbose {
		cfg.Logging.Level = "debug"
	}

	return cfg, nil
}

func newTranslator(cfg *config.Config) (*naming.Translator, error) {
	tcfg, err := cfg.TranslatorConfig()
	if err != nil {
		return nil, fmt.Errorf("naming config: %w", err)
	}

	return naming.NewTranslator(tcfg), nil
}

// newEngine builds the parser and the immutable engine of one run.
func newEngine(cfg *config.Config, logger *slog.Logger) (*cst.Parser, *rewrite.Engine, error) {
	parser, err := cst.NewParser()
	if err != nil {
		return nil, nil, fmt.Errorf("java parser: %w", err)
	}

	tr, err := newTranslator(cfg)
	if err != nil {
		return nil, nil, err
	}

	engine, err := rewrite.NewEngine(parser, cfg.RewriteOptions(), tr, logger)
	if err != nil {
		return nil, nil, err
	}

	return parser, engine, nil
}

func initObservability(cfg *config.Config, mode observability.AppMode) (observability.Providers, error) {
	ocfg := cfg.ObservabilityConfig(mode, version.Version)

	if mode != observability.ModeCLI {
		ocfg.LogJSON = true
	}

	providers, err := observability.Init(ocfg)
	if err != nil {
		return observability.Providers{}, fmt.Errorf("observability: %w", err)
	}

	return providers, nil
}

func shutdown(providers observability.Providers) {
	if err := providers.Shutdown(context.Background()); err != nil {
		providers.Logger.Warn("observability shutdown failed", "error", err)
	}
}
