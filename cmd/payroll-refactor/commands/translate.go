package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/samuelghellereTR/payroll-refactor-tool/pkg/naming"
)

const roleAll = "all"

var allRoles = []naming.Role{naming.RoleType, naming.RoleMethod, naming.RoleField, naming.RoleParameter}

// NewTranslateCommand creates the translate command.
func NewTranslateCommand(global *GlobalOptions) *cobra.Command {
	var role string

	cmd := &cobra.Command{
		Use:   "translate <name>...",
		Short: "Show the classification and translation of legacy identifiers",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			roles, err := parseRoles(role)
			if err != nil {
				return err
			}

			cfg, err := global.loadConfig()
			if err != nil {
				return err
			}

			tr, err := newTranslator(cfg)
			if err != nil {
				return err
			}

			tbl := table.NewWriter()
			tbl.SetOutputMirror(cmd.OutOrStdout())
			tbl.SetStyle(table.StyleLight)
			tbl.AppendHeader(table.Row{"Name", "Role", "Kind", "Legacy", "Translation"})

			for _, name := range args {
				for _, r := range roles {
					class, _ := tr.Classify(name, r)

					translated, terr := tr.Translate(name, r)
					if terr != nil {
						translated = "error: " + terr.Error()
					}

					tbl.AppendRow(table.Row{name, r.String(), class.Kind.String(), tr.IsLegacy(name, r), translated})
				}
			}

			tbl.Render()

			return nil
		},
	}

	cmd.Flags().StringVarP(&role, "role", "r", roleAll, "identifier role: type, method, field, parameter or all")

	return cmd
}

func parseRoles(name string) ([]naming.Role, error) {
	if name == roleAll {
		return allRoles, nil
	}

	r, ok := naming.ParseRole(name)
	if !ok {
		return nil, fmt.Errorf("unknown role %q", name)
	}

	return []naming.Role{r}, nil
}
