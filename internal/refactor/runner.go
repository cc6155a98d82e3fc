package refactor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"

	"github.com/samuelghellereTR/payroll-refactor-tool/pkg/cst"
	"github.com/samuelghellereTR/payroll-refactor-tool/pkg/observability"
	"github.com/samuelghellereTR/payroll-refactor-tool/pkg/rewrite"
)

// ErrNoRoot is returned when Options.Root is empty.
var ErrNoRoot = errors.New("input root is required")

const tracerName = "payroll-refactor/refactor"

// Options control a run.
type Options struct {
	// Root is a directory or a single source file.
	Root string
	// Output mirrors the input layout when set; otherwise files are
	// rewritten in place.
	Output           string
	Workers          int
	DryRun           bool
	Backup           bool
	CompressBackup   bool
	Extensions       []string
	RespectGitignore bool
	MaxFileSize      uint64
	// Diff keeps a line diff of every transformed file.
	Diff bool
}

// FileResult is the outcome of one file.
type FileResult struct {
	Path     string          `json:"path" yaml:"path"`
	Rel      string          `json:"rel" yaml:"rel"`
	Output   string          `json:"output,omitempty" yaml:"output,omitempty"`
	State    State           `json:"state" yaml:"state"`
	Report   *rewrite.Report `json:"-" yaml:"-"`
	Diff     string          `json:"diff,omitempty" yaml:"diff,omitempty"`
	Size     int64           `json:"size" yaml:"size"`
	Lines    int             `json:"lines" yaml:"lines"`
	Duration time.Duration   `json:"duration" yaml:"duration"`
}

// Result aggregates a run.
type Result struct {
	Report   *rewrite.Report `json:"report" yaml:"report"`
	Files    []FileResult    `json:"files" yaml:"files"`
	Skipped  []Skipped       `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	DryRun   bool            `json:"dry_run" yaml:"dry_run"`
	Duration time.Duration   `json:"duration" yaml:"duration"`
}

// Runner drives the engine over a source tree.
type Runner struct {
	parser  *cst.Parser
	engine  *rewrite.Engine
	opts    Options
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics *observability.RefactorMetrics
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the run logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithTracer sets the tracer used for run and file spans.
func WithTracer(t trace.Tracer) Option {
	return func(r *Runner) {
		if t != nil {
			r.tracer = t
		}
	}
}

// WithMetrics records per-file outcomes into m.
func WithMetrics(m *observability.RefactorMetrics) Option {
	return func(r *Runner) {
		r.metrics = m
	}
}

// NewRunner creates a runner. The parser and engine are shared by all
// workers.
func NewRunner(parser *cst.Parser, engine *rewrite.Engine, opts Options, options ...Option) (*Runner, error) {
	if opts.Root == "" {
		return nil, ErrNoRoot
	}

	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}

	if len(opts.Extensions) == 0 {
		opts.Extensions = []string{".java"}
	}

	r := &Runner{
		parser: parser,
		engine: engine,
		opts:   opts,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		tracer: noop.NewTracerProvider().Tracer(tracerName),
	}

	for _, o := range options {
		o(r)
	}

	return r, nil
}

// Run processes every discovered file. Per-file failures are folded into
// the report; only discovery errors and cancellation are returned.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	start := time.Now()

	ctx, span := r.tracer.Start(ctx, observability.SpanRun,
		trace.WithAttributes(
			attribute.String("root", r.opts.Root),
			attribute.Bool("dry_run", r.opts.DryRun),
		))
	defer span.End()

	discovery := Discovery{
		Extensions:       r.opts.Extensions,
		RespectGitignore: r.opts.RespectGitignore,
		MaxFileSize:      r.opts.MaxFileSize,
	}

	candidates, skipped, err := discovery.Walk(r.opts.Root)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())

		return nil, err
	}

	root := r.opts.Root
	if info, statErr := os.Stat(root); statErr == nil && !info.IsDir() {
		root = filepath.Dir(root)
	}

	root, err = filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}

	persister := Persister{
		Root:           root,
		Output:         r.opts.Output,
		Backup:         r.opts.Backup,
		CompressBackup: r.opts.CompressBackup,
	}

	r.logger.InfoContext(ctx, "run started",
		"root", root, "files", len(candidates), "workers", r.opts.Workers, "dry_run", r.opts.DryRun)

	results := make([]FileResult, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)

	for i, c := range candidates {
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			res, procErr := r.processFile(gctx, persister, c)
			if procErr != nil {
				return procErr
			}

			results[i] = res

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		span.SetStatus(codes.Error, err.Error())

		return nil, fmt.Errorf("run: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("run: %w", err)
	}

	total := rewrite.NewReport()

	for _, s := range skipped {
		total.Warn("%s: skipped: %s", s.Rel, s.Reason)
	}

	for _, res := range results {
		total.Merge(res.Report, res.Rel)
	}

	span.SetAttributes(
		attribute.Int("files.processed", total.FilesProcessed),
		attribute.Int("transformations", total.TransformationsApplied),
	)

	r.logger.InfoContext(ctx, "run finished",
		"files_processed", total.FilesProcessed,
		"transformations", total.TransformationsApplied,
		"warnings", len(total.Warnings),
		"success", total.Success)

	return &Result{
		Report:   total,
		Files:    results,
		Skipped:  skipped,
		DryRun:   r.opts.DryRun,
		Duration: time.Since(start),
	}, nil
}

func (r *Runner) processFile(ctx context.Context, p Persister, c Candidate) (FileResult, error) {
	start := time.Now()
	done := r.metrics.TrackInflight(ctx)

	defer done()

	ctx, span := r.tracer.Start(ctx, observability.SpanFile, trace.WithAttributes(attribute.String("file", c.Rel)))
	defer span.End()

	res := FileResult{Path: c.Path, Rel: c.Rel, Size: c.Size, State: StateUnprocessed}

	rep, err := r.transform(ctx, p, c, &res)
	if err != nil {
		return res, err
	}

	res.Report = rep
	res.Duration = time.Since(start)

	span.SetAttributes(attribute.String("state", res.State.String()))

	r.metrics.RecordFile(ctx, observability.FileOutcome{
		State:           res.State.String(),
		Transformations: rep.ByCategory,
		Warnings:        len(rep.Warnings),
		ParseFailed:     res.State == StateParseFailed,
		Duration:        res.Duration,
	})

	return res, nil
}

func (r *Runner) transform(ctx context.Context, p Persister, c Candidate, res *FileResult) (*rewrite.Report, error) {
	rep := rewrite.NewReport()

	src, err := os.ReadFile(c.Path)
	if err != nil {
		res.State = StateParseFailed
		rep.Fail("read failure: %v", err)

		return rep, nil
	}

	res.Lines, err = sniff(src)
	if err != nil {
		res.State = StateParseFailed
		rep.Fail("parse failure: %v", err)

		return rep, nil
	}

	tree, err := r.parser.Parse(ctx, src)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		res.State = StateParseFailed
		rep.Fail("parse failure: %v", err)
		r.logger.WarnContext(ctx, "parse failure", "file", c.Rel, "error", err)

		return rep, nil
	}

	res.State = StateParsed

	rep, err = r.rewrite(ctx, tree)
	if err != nil {
		return nil, err
	}

	if !rep.Changed() {
		res.State = StateUnchanged

		return rep, nil
	}

	res.State = StateTransformed
	out := tree.Render()

	dst := p.Target(c.Rel, rep.TypeRenames)
	if p.Output == "" && dst != c.Path {
		if _, statErr := os.Stat(dst); statErr == nil {
			rep.Warn("file rename skipped: %s already exists", filepath.Base(dst))
			dst = p.Target(c.Rel, nil)
		}
	}

	res.Output = dst

	if r.opts.Diff || r.opts.DryRun {
		res.Diff = LineDiff(c.Rel, relTo(p, dst), string(src), out)
	}

	if r.opts.DryRun {
		res.State = StateDryRunSkipped
		r.logger.DebugContext(ctx, "dry run", "file", c.Rel, "transformations", rep.TransformationsApplied)

		return rep, nil
	}

	if err := p.Write(c.Path, dst, []byte(out)); err != nil {
		rep.Fail("persist failure: %v", err)
		r.logger.ErrorContext(ctx, "persist failure", "file", c.Rel, "error", err)

		return rep, nil
	}

	res.State = StatePersisted
	r.logger.DebugContext(ctx, "file rewritten",
		"file", c.Rel, "output", dst, "transformations", rep.TransformationsApplied)

	return rep, nil
}

func (r *Runner) rewrite(ctx context.Context, tree *cst.Tree) (*rewrite.Report, error) {
	ctx, span := r.tracer.Start(ctx, observability.SpanRewrite)
	defer span.End()

	rep, err := r.engine.ApplyAll(ctx, tree)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return nil, err
	}

	span.SetAttributes(
		attribute.Int("transformations", rep.TransformationsApplied),
		attribute.Int("warnings", len(rep.Warnings)),
	)

	return rep, nil
}

func relTo(p Persister, dst string) string {
	base := p.Root
	if p.Output != "" {
		base = p.Output
	}

	rel, err := filepath.Rel(base, dst)
	if err != nil {
		return dst
	}

	return filepath.ToSlash(rel)
}
