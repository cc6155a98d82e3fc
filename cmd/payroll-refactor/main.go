// Package main provides the entry point for the payroll-refactor CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/samuelghellereTR/payroll-refactor-tool/cmd/payroll-refactor/commands"
	"github.com/samuelghellereTR/payroll-refactor-tool/pkg/version"
)

func main() {
	version.InitBinaryVersion()

	global := &commands.GlobalOptions{}

	rootCmd := &cobra.Command{
		Use:   "payroll-refactor",
		Short: "Refactor Java code migrated from PowerBuilder",
		Long: `payroll-refactor removes legacy helper wrappers from migrated Java sources
and renames legacy identifiers to Java conventions.

Commands:
  run        Rewrite a file or source tree
  translate  Show how legacy identifiers would be renamed
  parse      Dump the syntax tree of a Java file
  mcp        Serve the rewrite tools over MCP
  lsp        Serve rewrite diagnostics over LSP`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&global.ConfigPath, "config", "c", "", "config file (default: payroll-refactor.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&global.Verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(commands.NewRunCommand(global))
	rootCmd.AddCommand(commands.NewTranslateCommand(global))
	rootCmd.AddCommand(commands.NewParseCommand())
	rootCmd.AddCommand(commands.NewMCPCommand(global))
	rootCmd.AddCommand(commands.NewLSPCommand(global))
	rootCmd.AddCommand(versionCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := rootCmd.ExecuteContext(ctx)

	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}
