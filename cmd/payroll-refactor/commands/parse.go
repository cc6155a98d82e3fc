package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/samuelghellereTR/payroll-refactor-tool/pkg/cst"
)

// NewParseCommand creates the parse command.
func NewParseCommand() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Dump the concrete syntax tree of a Java file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			parser, err := cst.NewParser()
			if err != nil {
				return err
			}

			tree, err := parser.ParseTolerant(cmd.Context(), src)

			var syn *cst.SyntaxError
			if err != nil && !errors.As(err, &syn) {
				return err
			}

			if syn != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", syn)
			}

			return cst.Dump(cmd.OutOrStdout(), tree.Root, !all)
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "include anonymous tokens such as punctuation")

	return cmd
}
