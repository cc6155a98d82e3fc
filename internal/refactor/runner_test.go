package refactor_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/samuelghellereTR/payroll-refactor-tool/internal/refactor"
	"github.com/samuelghellereTR/payroll-refactor-tool/pkg/cst"
	"github.com/samuelghellereTR/payroll-refactor-tool/pkg/naming"
	"github.com/samuelghellereTR/payroll-refactor-tool/pkg/observability"
	"github.com/samuelghellereTR/payroll-refactor-tool/pkg/rewrite"
)

const (
	legacySource = "package p;\n\nimport java.math.BigDecimal;\n\nclass Calc {\n" +
		"    BigDecimal z = createDecimal(ZERO, 2);\n}\n"
	rewrittenSource = "package p;\n\nimport java.math.BigDecimal;\nimport java.math.RoundingMode;\n\nclass Calc {\n" +
		"    BigDecimal z = ZERO.setScale(2, RoundingMode.HALF_UP);\n}\n"
	cleanSource = "package p;\n\nclass Clean {\n    int x = 1;\n}\n"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	return string(data)
}

func newRunner(t *testing.T, opts refactor.Options, options ...refactor.Option) *refactor.Runner {
	t.Helper()

	parser, err := cst.NewParser()
	require.NoError(t, err)

	engine, err := rewrite.NewEngine(parser, rewrite.DefaultOptions(), naming.NewTranslator(naming.DefaultConfig()), nil)
	require.NoError(t, err)

	r, err := refactor.NewRunner(parser, engine, opts, options...)
	require.NoError(t, err)

	return r
}

func fileState(t *testing.T, res *refactor.Result, rel string) refactor.State {
	t.Helper()

	for _, f := range res.Files {
		if f.Rel == rel {
			return f.State
		}
	}

	t.Fatalf("no result for %s", rel)

	return refactor.StateUnprocessed
}

func TestRun_RewritesInPlaceWithBackup(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	calc := filepath.Join(root, "src", "Calc.java")
	clean := filepath.Join(root, "src", "Clean.java")
	writeFile(t, calc, legacySource)
	writeFile(t, clean, cleanSource)

	res, err := newRunner(t, refactor.Options{Root: root, Backup: true, Workers: 2}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, rewrittenSource, readFile(t, calc))
	assert.Equal(t, legacySource, readFile(t, calc+".backup"))
	assert.Equal(t, cleanSource, readFile(t, clean))
	assert.NoFileExists(t, clean+".backup")

	assert.Equal(t, 1, res.Report.FilesProcessed)
	assert.Equal(t, 1, res.Report.TransformationsApplied)
	assert.True(t, res.Report.Success)
	assert.Equal(t, 7, res.Files[0].Lines)
	assert.Equal(t, refactor.StatePersisted, fileState(t, res, "src/Calc.java"))
	assert.Equal(t, refactor.StateUnchanged, fileState(t, res, "src/Clean.java"))
}

func TestRun_CompressedBackup(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	calc := filepath.Join(root, "Calc.java")
	writeFile(t, calc, legacySource)

	_, err := newRunner(t, refactor.Options{Root: root, Backup: true, CompressBackup: true}).Run(context.Background())
	require.NoError(t, err)

	assert.NoFileExists(t, calc+".backup")

	restored, err := refactor.RestoreBackup(calc + ".backup.lz4")
	require.NoError(t, err)
	assert.Equal(t, legacySource, string(restored))
}

func TestRun_DryRunLeavesFilesUntouched(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	calc := filepath.Join(root, "Calc.java")
	writeFile(t, calc, legacySource)

	res, err := newRunner(t, refactor.Options{Root: root, DryRun: true, Backup: true}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, legacySource, readFile(t, calc))
	assert.NoFileExists(t, calc+".backup")
	assert.True(t, res.DryRun)
	assert.Equal(t, 1, res.Report.FilesProcessed)
	require.Len(t, res.Files, 1)
	assert.Equal(t, refactor.StateDryRunSkipped, res.Files[0].State)
	assert.Contains(t, res.Files[0].Diff, "-    BigDecimal z = createDecimal(ZERO, 2);\n")
	assert.Contains(t, res.Files[0].Diff, "+    BigDecimal z = ZERO.setScale(2, RoundingMode.HALF_UP);\n")
}

func TestRun_OutputDirMirrorsLayout(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	out := t.TempDir()
	calc := filepath.Join(root, "pkg", "Calc.java")
	writeFile(t, calc, legacySource)
	writeFile(t, filepath.Join(root, "pkg", "Clean.java"), cleanSource)

	res, err := newRunner(t, refactor.Options{Root: root, Output: out, Backup: true}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, legacySource, readFile(t, calc))
	assert.Equal(t, rewrittenSource, readFile(t, filepath.Join(out, "pkg", "Calc.java")))
	assert.NoFileExists(t, filepath.Join(out, "pkg", "Clean.java"))
	assert.NoFileExists(t, filepath.Join(out, "pkg", "Calc.java.backup"))
	assert.Equal(t, filepath.Join(out, "pkg", "Calc.java"), res.Files[0].Output)
}

func TestRun_ParseFailureClearsSuccess(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Broken.java"), "class {\n")
	writeFile(t, filepath.Join(root, "Calc.java"), legacySource)

	res, err := newRunner(t, refactor.Options{Root: root}).Run(context.Background())
	require.NoError(t, err)

	assert.False(t, res.Report.Success)
	assert.Equal(t, 1, res.Report.FilesProcessed)
	assert.Equal(t, refactor.StateParseFailed, fileState(t, res, "Broken.java"))
	assert.Equal(t, refactor.StatePersisted, fileState(t, res, "Calc.java"))
	require.NotEmpty(t, res.Report.Warnings)
	assert.Contains(t, res.Report.Warnings[0], "Broken.java: parse failure")
	assert.Equal(t, "class {\n", readFile(t, filepath.Join(root, "Broken.java")))
}

func TestRun_PersistFailureClearsSuccess(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Calc.java"), legacySource)

	// A regular file where the output directory should be.
	output := filepath.Join(t.TempDir(), "out")
	writeFile(t, output, "")

	res, err := newRunner(t, refactor.Options{Root: root, Output: output}).Run(context.Background())
	require.NoError(t, err)

	assert.False(t, res.Report.Success)
	assert.Equal(t, refactor.StateTransformed, fileState(t, res, "Calc.java"))
	require.Len(t, res.Report.Warnings, 1)
	assert.Contains(t, res.Report.Warnings[0], "Calc.java: persist failure")
	assert.Equal(t, legacySource, readFile(t, filepath.Join(root, "Calc.java")))
}

func TestRun_TracesRewritePerFile(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Calc.java"), legacySource)
	writeFile(t, filepath.Join(root, "Clean.java"), cleanSource)
	writeFile(t, filepath.Join(root, "Broken.java"), "class {\n")

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	_, err := newRunner(t, refactor.Options{Root: root, DryRun: true},
		refactor.WithTracer(tp.Tracer("test"))).Run(context.Background())
	require.NoError(t, err)

	counts := map[string]int{}
	for _, span := range recorder.Ended() {
		counts[span.Name()]++
	}

	assert.Equal(t, 1, counts[observability.SpanRun])
	assert.Equal(t, 3, counts[observability.SpanFile])
	assert.Equal(t, 2, counts[observability.SpanRewrite])
}

func TestRun_BinaryFileIsParseFailure(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Blob.java"), "\x00\x01\x02")

	res, err := newRunner(t, refactor.Options{Root: root}).Run(context.Background())
	require.NoError(t, err)

	assert.False(t, res.Report.Success)
	assert.Equal(t, refactor.StateParseFailed, fileState(t, res, "Blob.java"))
	assert.Contains(t, res.Report.Warnings[0], "binary content")
}

func TestRun_RenamesFileAfterType(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	legacy := filepath.Join(root, "s_base.java")
	writeFile(t, legacy, "package p;\n\nclass s_base {\n}\n")

	res, err := newRunner(t, refactor.Options{Root: root}).Run(context.Background())
	require.NoError(t, err)

	assert.NoFileExists(t, legacy)
	assert.Equal(t, "package p;\n\nclass Base {\n}\n", readFile(t, filepath.Join(root, "Base.java")))
	assert.Equal(t, "Base", res.Report.TypeRenames["s_base"])
}

func TestRun_SingleFileRoot(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	calc := filepath.Join(root, "Calc.java")
	writeFile(t, calc, legacySource)
	writeFile(t, filepath.Join(root, "Other.java"), legacySource)

	res, err := newRunner(t, refactor.Options{Root: calc}).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, res.Files, 1)
	assert.Equal(t, rewrittenSource, readFile(t, calc))
	assert.Equal(t, legacySource, readFile(t, filepath.Join(root, "Other.java")))
}

func TestRun_Cancelled(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Calc.java"), legacySource)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newRunner(t, refactor.Options{Root: root}).Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, legacySource, readFile(t, filepath.Join(root, "Calc.java")))
}

func TestNewRunner_RequiresRoot(t *testing.T) {
	t.Parallel()

	_, err := refactor.NewRunner(nil, nil, refactor.Options{})
	require.ErrorIs(t, err, refactor.ErrNoRoot)
}
