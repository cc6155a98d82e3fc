package commands

import (
	"github.com/spf13/cobra"

	"github.com/samuelghellereTR/payroll-refactor-tool/pkg/mcp"
	"github.com/samuelghellereTR/payroll-refactor-tool/pkg/observability"
	"github.com/samuelghellereTR/payroll-refactor-tool/pkg/version"
)

// NewMCPCommand creates the MCP server command.
func NewMCPCommand(global *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Start an MCP server for AI agent integration",
		Long: `Start a Model Context Protocol (MCP) server on stdio transport.

Tools:
  - translate_identifier: translate a legacy identifier for a given role
  - rewrite_source: rewrite a Java compilation unit and report the changes`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := global.loadConfig()
			if err != nil {
				return err
			}

			providers, err := initObservability(cfg, observability.ModeMCP)
			if err != nil {
				return err
			}
			defer shutdown(providers)

			parser, engine, err := newEngine(cfg, providers.Logger)
			if err != nil {
				return err
			}

			srv, err := mcp.NewServer(mcp.ServerDeps{
				Parser:  parser,
				Engine:  engine,
				Version: version.Version,
				Logger:  providers.Logger,
				Tracer:  providers.Tracer,
			})
			if err != nil {
				return err
			}

			return srv.Run(cmd.Context())
		},
	}
}
