package commands_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samuelghellereTR/payroll-refactor-tool/cmd/payroll-refactor/commands"
)

const legacySource = "package p;\n\nimport java.math.BigDecimal;\n\nclass Calc {\n" +
	"    BigDecimal z = createDecimal(ZERO, 2);\n}\n"

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()

	return out.String(), err
}

func sourceTree(t *testing.T, files map[string]string) string {
	t.Helper()

	root := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte(content), 0o644))
	}

	return root
}

func TestRunCommand_JSONSummary(t *testing.T) {
	root := sourceTree(t, map[string]string{"Calc.java": legacySource})

	out, err := execute(t, commands.NewRunCommand(&commands.GlobalOptions{}), root, "--format", "json", "--backup=false")
	require.NoError(t, err)

	var decoded struct {
		Report struct {
			FilesProcessed         int  `json:"files_processed"`
			TransformationsApplied int  `json:"transformations_applied"`
			Success                bool `json:"success"`
		} `json:"report"`
	}

	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, 1, decoded.Report.FilesProcessed)
	assert.Equal(t, 1, decoded.Report.TransformationsApplied)
	assert.True(t, decoded.Report.Success)

	data, err := os.ReadFile(filepath.Join(root, "Calc.java"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "ZERO.setScale(2, RoundingMode.HALF_UP)")
	assert.NoFileExists(t, filepath.Join(root, "Calc.java.backup"))
}

func TestRunCommand_DryRunWithPlot(t *testing.T) {
	root := sourceTree(t, map[string]string{"Calc.java": legacySource})
	plot := filepath.Join(t.TempDir(), "plot.html")

	out, err := execute(t, commands.NewRunCommand(&commands.GlobalOptions{}), root, "--dry-run", "--no-color", "--plot", plot)
	require.NoError(t, err)

	assert.Contains(t, out, "REFACTOR SUMMARY (dry run)")
	assert.Contains(t, out, "+    BigDecimal z = ZERO.setScale(2, RoundingMode.HALF_UP);")

	data, err := os.ReadFile(filepath.Join(root, "Calc.java"))
	require.NoError(t, err)
	assert.Equal(t, legacySource, string(data))

	html, err := os.ReadFile(plot)
	require.NoError(t, err)
	assert.Contains(t, string(html), "Calc.java")
}

func TestRunCommand_ParseFailureExitsNonZero(t *testing.T) {
	root := sourceTree(t, map[string]string{"Broken.java": "class {\n"})

	out, err := execute(t, commands.NewRunCommand(&commands.GlobalOptions{}), root, "--no-color")
	require.ErrorIs(t, err, commands.ErrRunFailed)
	assert.Contains(t, out, "Broken.java: parse failure")
}

func TestRunCommand_MetricsFile(t *testing.T) {
	root := sourceTree(t, map[string]string{"Calc.java": legacySource})
	metrics := filepath.Join(t.TempDir(), "refactor.prom")

	_, err := execute(t, commands.NewRunCommand(&commands.GlobalOptions{}), root, "--dry-run", "--metrics-file", metrics)
	require.NoError(t, err)

	data, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(data), "payroll_refactor")
}

func TestRunCommand_InvalidFlags(t *testing.T) {
	root := sourceTree(t, map[string]string{"Calc.java": legacySource})

	_, err := execute(t, commands.NewRunCommand(&commands.GlobalOptions{}), root, "--format", "xml")
	require.Error(t, err)

	_, err = execute(t, commands.NewRunCommand(&commands.GlobalOptions{}), root, "--workers", "-1")
	require.Error(t, err)

	_, err = execute(t, commands.NewRunCommand(&commands.GlobalOptions{ConfigPath: filepath.Join(root, "missing.yaml")}), root)
	require.Error(t, err)
}

func TestTranslateCommand(t *testing.T) {
	out, err := execute(t, commands.NewTranslateCommand(&commands.GlobalOptions{}), "s_base", "of_calc_base", "--role", "all")
	require.NoError(t, err)

	assert.Contains(t, out, "Base")
	assert.Contains(t, out, "calculateBase")

	_, err = execute(t, commands.NewTranslateCommand(&commands.GlobalOptions{}), "x", "--role", "module")
	require.Error(t, err)
}

func TestParseCommand(t *testing.T) {
	root := sourceTree(t, map[string]string{"A.java": "class A {}\n", "Bad.java": "class {\n"})

	out, err := execute(t, commands.NewParseCommand(), filepath.Join(root, "A.java"))
	require.NoError(t, err)
	assert.Contains(t, out, "class_declaration [1:1]")

	out, err = execute(t, commands.NewParseCommand(), filepath.Join(root, "Bad.java"))
	require.NoError(t, err)
	assert.Contains(t, out, "warning:")
}
