package report

import (
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/samuelghellereTR/payroll-refactor-tool/internal/refactor"
	"github.com/samuelghellereTR/payroll-refactor-tool/pkg/rewrite"
)

const (
	plotWidth   = "100%"
	plotHeight  = "500px"
	xAxisRotate = 45
	topFiles    = 30
)

// WritePlot renders an HTML page with transformations per file, stacked by
// category.
func WritePlot(w io.Writer, res *refactor.Result) error {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "payroll-refactor",
			Width:     plotWidth,
			Height:    plotHeight,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Transformations per file",
			Subtitle: fmt.Sprintf("%d transformations in %d files", res.Report.TransformationsApplied, res.Report.FilesProcessed),
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithXAxisOpts(opts.XAxis{
			AxisLabel: &opts.AxisLabel{Rotate: xAxisRotate, Interval: "0"},
		}),
	)

	files := changedFiles(res.Files)

	labels := make([]string, len(files))
	for i, f := range files {
		labels[i] = f.Rel
	}

	bar.SetXAxis(labels)

	for _, cat := range categories(res.Report) {
		data := make([]opts.BarData, len(files))
		for i, f := range files {
			data[i] = opts.BarData{Value: f.Report.ByCategory[cat]}
		}

		bar.AddSeries(cat, data, charts.WithBarChartOpts(opts.BarChart{Stack: "total"}))
	}

	if err := bar.Render(w); err != nil {
		return fmt.Errorf("render plot: %w", err)
	}

	return nil
}

// changedFiles returns the files with transformations, most changed first.
func changedFiles(all []refactor.FileResult) []refactor.FileResult {
	var out []refactor.FileResult

	for _, f := range all {
		if f.Report != nil && f.Report.Changed() {
			out = append(out, f)
		}
	}

	slices.SortStableFunc(out, func(a, b refactor.FileResult) int {
		return b.Report.TransformationsApplied - a.Report.TransformationsApplied
	})

	if len(out) > topFiles {
		out = out[:topFiles]
	}

	return out
}

// categories lists the categories present in rep in application order.
func categories(rep *rewrite.Report) []string {
	var out []string

	for _, c := range rewrite.Categories {
		if rep.ByCategory[c.String()] > 0 {
			out = append(out, c.String())
		}
	}

	for _, name := range slices.Sorted(maps.Keys(rep.ByCategory)) {
		if !slices.Contains(out, name) && rep.ByCategory[name] > 0 {
			out = append(out, name)
		}
	}

	return out
}
