package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/samuelghellereTR/payroll-refactor-tool/internal/refactor"
	"github.com/samuelghellereTR/payroll-refactor-tool/internal/report"
	"github.com/samuelghellereTR/payroll-refactor-tool/pkg/config"
	"github.com/samuelghellereTR/payroll-refactor-tool/pkg/observability"
)

// ErrRunFailed is returned when at least one file could not be parsed or
// its rewritten form could not be written.
var ErrRunFailed = errors.New("refactoring finished with failed files")

// RunCommand holds the flags of the run command.
type RunCommand struct {
	global *GlobalOptions

	output         string
	dryRun         bool
	backup         bool
	compressBackup bool
	workers        int
	diff           bool
	noColor        bool
	noRename       bool
	format         string
	plot           string
	metricsFile    string
}

// NewRunCommand creates the run command.
func NewRunCommand(global *GlobalOptions) *cobra.Command {
	rc := &RunCommand{global: global}

	cmd := &cobra.Command{
		Use:   "run <path>",
		Short: "Rewrite legacy wrappers and identifiers in a file or directory",
		Long: `Rewrite every Java file under <path>.

Precision, math, boolean and type wrappers are replaced by their standard
Java equivalents and legacy identifiers are renamed. Files that fail to parse
are reported and left untouched; the command then exits non-zero.`,
		Args: cobra.ExactArgs(1),
		RunE: rc.run,
	}

	f := cmd.Flags()
	f.StringVarP(&rc.output, "output", "o", "", "write results to this directory instead of in place")
	f.BoolVarP(&rc.dryRun, "dry-run", "n", false, "report and diff changes without writing files")
	f.BoolVar(&rc.backup, "backup", config.DefaultBackup, "keep a .backup copy of every overwritten file")
	f.BoolVar(&rc.compressBackup, "compress-backup", config.DefaultCompressBackup, "compress backups with lz4")
	f.IntVarP(&rc.workers, "workers", "w", config.DefaultWorkers, "parallel workers (0 = number of CPUs)")
	f.BoolVar(&rc.diff, "diff", false, "print a diff of every changed file")
	f.BoolVar(&rc.noColor, "no-color", false, "disable colored output")
	f.BoolVar(&rc.noRename, "no-rename", false, "skip identifier renaming")
	f.StringVarP(&rc.format, "format", "f", string(report.FormatText), "summary format: text, json or yaml")
	f.StringVar(&rc.plot, "plot", "", "write an HTML chart of transformations to this file")
	f.StringVar(&rc.metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile on exit")

	return cmd
}

// applyFlags lets explicitly set flags override the configuration.
func (rc *RunCommand) applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	f := cmd.Flags()

	if f.Changed("output") {
		cfg.Run.Output = rc.output
	}

	if f.Changed("dry-run") {
		cfg.Run.DryRun = rc.dryRun
	}

	if f.Changed("backup") {
		cfg.Run.Backup = rc.backup
	}

	if f.Changed("compress-backup") {
		cfg.Run.CompressBackup = rc.compressBackup
	}

	if f.Changed("workers") {
		cfg.Run.Workers = rc.workers
	}

	if f.Changed("metrics-file") {
		cfg.Telemetry.MetricsFile = rc.metricsFile
	}

	if rc.noRename {
		cfg.Rewrite.Rename = false
	}

	return cfg.Validate()
}

func (rc *RunCommand) run(cmd *cobra.Command, args []string) error {
	format, err := report.ParseFormat(rc.format)
	if err != nil {
		return err
	}

	cfg, err := rc.global.loadConfig()
	if err != nil {
		return err
	}

	if err := rc.applyFlags(cmd, cfg); err != nil {
		return err
	}

	maxSize, err := cfg.Run.MaxFileSizeBytes()
	if err != nil {
		return err
	}

	providers, err := initObservability(cfg, observability.ModeCLI)
	if err != nil {
		return err
	}
	defer shutdown(providers)

	metrics, err := observability.NewRefactorMetrics(providers.Meter)
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	parser, engine, err := newEngine(cfg, providers.Logger)
	if err != nil {
		return err
	}

	runner, err := refactor.NewRunner(parser, engine, refactor.Options{
		Root:             args[0],
		Output:           cfg.Run.Output,
		Workers:          cfg.Run.Workers,
		DryRun:           cfg.Run.DryRun,
		Backup:           cfg.Run.Backup,
		CompressBackup:   cfg.Run.CompressBackup,
		Extensions:       cfg.Run.Extensions,
		RespectGitignore: cfg.Run.RespectGitignore,
		MaxFileSize:      maxSize,
		Diff:             rc.diff,
	},
		refactor.WithLogger(providers.Logger),
		refactor.WithTracer(providers.Tracer),
		refactor.WithMetrics(metrics),
	)
	if err != nil {
		return err
	}

	res, err := runner.Run(cmd.Context())
	if err != nil {
		return err
	}

	err = report.Write(cmd.OutOrStdout(), res, report.Options{
		Format:   format,
		Verbose:  rc.global.Verbose,
		ShowDiff: rc.diff || cfg.Run.DryRun,
		NoColor:  rc.noColor,
	})
	if err != nil {
		return err
	}

	if rc.plot != "" {
		if err := writePlot(rc.plot, res); err != nil {
			return err
		}
	}

	if !res.Report.Success {
		return ErrRunFailed
	}

	return nil
}

func writePlot(path string, res *refactor.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create plot: %w", err)
	}

	if err := report.WritePlot(f, res); err != nil {
		f.Close()

		return err
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close plot: %w", err)
	}

	return nil
}
