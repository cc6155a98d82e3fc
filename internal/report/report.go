// Package report renders run results for people and machines.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"

	"github.com/samuelghellereTR/payroll-refactor-tool/internal/refactor"
)

// ErrUnknownFormat is returned for an unsupported output format.
var ErrUnknownFormat = errors.New("unknown output format")

// Format selects the summary encoding.
type Format string

// Supported formats.
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name. The empty string selects text.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(name)); f {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON, FormatYAML:
		return f, nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// Options control text rendering.
type Options struct {
	Format Format
	// Verbose lists every file, not only the changed ones, and each
	// transformation.
	Verbose bool
	// ShowDiff prints the collected diffs.
	ShowDiff bool
	NoColor  bool
}

// Write renders res to w.
func Write(w io.Writer, res *refactor.Result, o Options) error {
	switch o.Format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		if err := enc.Encode(res); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}

		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)

		if err := enc.Encode(res); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}

		return enc.Close()
	case FormatText, "":
		return writeText(w, res, o)
	}

	return fmt.Errorf("%w: %q", ErrUnknownFormat, o.Format)
}

type palette struct {
	title, ok, warn, fail, add, del *color.Color
}

func newPalette(noColor bool) palette {
	p := palette{
		title: color.New(color.FgBlue, color.Bold),
		ok:    color.New(color.FgGreen),
		warn:  color.New(color.FgYellow),
		fail:  color.New(color.FgRed),
		add:   color.New(color.FgGreen),
		del:   color.New(color.FgRed),
	}

	if noColor {
		for _, c := range []*color.Color{p.title, p.ok, p.warn, p.fail, p.add, p.del} {
			c.DisableColor()
		}
	}

	return p
}

func writeText(w io.Writer, res *refactor.Result, o Options) error {
	p := newPalette(o.NoColor)
	rep := res.Report

	var sb strings.Builder

	title := "REFACTOR SUMMARY"
	if res.DryRun {
		title += " (dry run)"
	}

	p.title.Fprintln(&sb, title)
	fmt.Fprintf(&sb, "Files processed:         %s of %s\n",
		humanize.Comma(int64(rep.FilesProcessed)), humanize.Comma(int64(len(res.Files))))
	fmt.Fprintf(&sb, "Transformations applied: %s\n", humanize.Comma(int64(rep.TransformationsApplied)))
	fmt.Fprintf(&sb, "Warnings:                %d\n", len(rep.Warnings))
	fmt.Fprintf(&sb, "Elapsed:                 %s\n", res.Duration.Round(time.Millisecond))

	if rep.Success {
		p.ok.Fprintln(&sb, "Status: success")
	} else {
		p.fail.Fprintln(&sb, "Status: failed (unparseable or unwritable files)")
	}

	if len(rep.ByCategory) > 0 {
		sb.WriteString("\n")
		sb.WriteString(categoryTable(rep.ByCategory))
		sb.WriteString("\n")
	}

	if files := fileTable(res.Files, o.Verbose); files != "" {
		sb.WriteString("\n")
		sb.WriteString(files)
		sb.WriteString("\n")
	}

	if len(rep.TypeRenames) > 0 {
		sb.WriteString("\nRenamed types:\n")

		for _, old := range slices.Sorted(maps.Keys(rep.TypeRenames)) {
			fmt.Fprintf(&sb, "  %s -> %s\n", old, rep.TypeRenames[old])
		}
	}

	if o.Verbose && len(rep.Changes) > 0 {
		sb.WriteString("\nTransformations:\n")

		for _, c := range rep.Changes {
			fmt.Fprintf(&sb, "  %d:%d %s: %s -> %s\n", c.Line, c.Column, c.Rule, c.Before, c.After)
		}
	}

	if len(rep.Warnings) > 0 {
		sb.WriteString("\n")
		p.warn.Fprintln(&sb, "Warnings:")

		for _, msg := range rep.Warnings {
			p.warn.Fprintf(&sb, "  - %s\n", msg)
		}
	}

	if o.ShowDiff {
		for _, f := range res.Files {
			if f.Diff != "" {
				sb.WriteString("\n")
				writeDiff(&sb, f.Diff, p)
			}
		}
	}

	_, err := io.WriteString(w, sb.String())
	if err != nil {
		return fmt.Errorf("write summary: %w", err)
	}

	return nil
}

func categoryTable(byCategory map[string]int) string {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"Category", "Transformations"})

	total := 0

	for _, name := range slices.Sorted(maps.Keys(byCategory)) {
		tbl.AppendRow(table.Row{name, byCategory[name]})
		total += byCategory[name]
	}

	tbl.AppendFooter(table.Row{"Total", total})

	return tbl.Render()
}

func fileTable(files []refactor.FileResult, all bool) string {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"File", "State", "Transformations", "Warnings", "Lines", "Size", "Time"})

	rows := 0

	for _, f := range files {
		if !all && f.State == refactor.StateUnchanged {
			continue
		}

		applied, warnings := 0, 0
		if f.Report != nil {
			applied, warnings = f.Report.TransformationsApplied, len(f.Report.Warnings)
		}

		tbl.AppendRow(table.Row{
			f.Rel, f.State.String(), applied, warnings, humanize.Comma(int64(f.Lines)),
			humanize.Bytes(uint64(max(f.Size, 0))), f.Duration.Round(time.Microsecond),
		})
		rows++
	}

	if rows == 0 {
		return ""
	}

	return tbl.Render()
}

func writeDiff(sb *strings.Builder, diff string, p palette) {
	for _, line := range strings.SplitAfter(diff, "\n") {
		switch {
		case line == "":
		case strings.HasPrefix(line, "---"), strings.HasPrefix(line, "+++"):
			p.title.Fprint(sb, line)
		case strings.HasPrefix(line, "+"):
			p.add.Fprint(sb, line)
		case strings.HasPrefix(line, "-"):
			p.del.Fprint(sb, line)
		default:
			sb.WriteString(line)
		}
	}
}
