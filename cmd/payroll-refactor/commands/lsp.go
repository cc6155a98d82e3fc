package commands

import (
	"github.com/spf13/cobra"

	"github.com/samuelghellereTR/payroll-refactor-tool/pkg/lsp"
	"github.com/samuelghellereTR/payroll-refactor-tool/pkg/observability"
	"github.com/samuelghellereTR/payroll-refactor-tool/pkg/version"
)

// NewLSPCommand creates the language server command.
func NewLSPCommand(global *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "lsp",
		Short: "Start a language server publishing pending rewrites as diagnostics",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := global.loadConfig()
			if err != nil {
				return err
			}

			providers, err := initObservability(cfg, observability.ModeLSP)
			if err != nil {
				return err
			}
			defer shutdown(providers)

			parser, engine, err := newEngine(cfg, providers.Logger)
			if err != nil {
				return err
			}

			srv, err := lsp.NewServer(parser, engine, version.Version, providers.Logger)
			if err != nil {
				return err
			}

			return srv.Run()
		},
	}
}
