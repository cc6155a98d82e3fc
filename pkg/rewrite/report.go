package rewrite

import (
	"fmt"
	"maps"
)

// Change describes one applied transformation.
type Change struct {
	Rule     string `json:"rule" yaml:"rule"`
	Category string `json:"category" yaml:"category"`
	Line     int    `json:"line" yaml:"line"`
	Column   int    `json:"column" yaml:"column"`
	Before   string `json:"before" yaml:"before"`
	After    string `json:"after" yaml:"after"`
}

// Report summarizes a rewrite pass over one or more compilation units.
type Report struct {
	// FilesProcessed counts compilation units that changed.
	FilesProcessed int `json:"files_processed" yaml:"files_processed"`
	// TransformationsApplied counts successful rule applications.
	TransformationsApplied int `json:"transformations_applied" yaml:"transformations_applied"`
	// Warnings lists skipped rewrites and failed files in order.
	Warnings []string `json:"warnings" yaml:"warnings"`
	// Success is false when any file could not be parsed.
	Success bool `json:"success" yaml:"success"`
	// ByCategory breaks TransformationsApplied down by category name.
	ByCategory map[string]int `json:"by_category" yaml:"by_category"`
	Changes    []Change       `json:"changes,omitempty" yaml:"changes,omitempty"`
	// TypeRenames maps renamed type names to their new names.
	TypeRenames map[string]string `json:"type_renames,omitempty" yaml:"type_renames,omitempty"`
}

// NewReport returns an empty successful report.
func NewReport() *Report {
	return &Report{
		Success:     true,
		Warnings:    []string{},
		ByCategory:  map[string]int{},
		TypeRenames: map[string]string{},
	}
}

// Changed reports whether at least one transformation was applied.
func (r *Report) Changed() bool {
	return r.TransformationsApplied > 0
}

// Warn appends a formatted warning.
func (r *Report) Warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Fail records a fatal per-file problem and clears Success.
func (r *Report) Fail(format string, args ...any) {
	r.Warn(format, args...)
	r.Success = false
}

// Merge folds other into r. Warnings of other are prefixed with prefix
// when it is not empty.
func (r *Report) Merge(other *Report, prefix string) {
	r.FilesProcessed += other.FilesProcessed
	r.TransformationsApplied += other.TransformationsApplied
	r.Success = r.Success && other.Success
	r.Changes = append(r.Changes, other.Changes...)

	for _, w := range other.Warnings {
		if prefix != "" {
			w = prefix + ": " + w
		}

		r.Warnings = append(r.Warnings, w)
	}

	for k, v := range other.ByCategory {
		r.ByCategory[k] += v
	}

	maps.Copy(r.TypeRenames, other.TypeRenames)
}

func (r *Report) record(rule string, cat Category, line, col int, before, after string) {
	r.TransformationsApplied++
	r.ByCategory[cat.String()]++
	r.Changes = append(r.Changes, Change{
		Rule:     rule,
		Category: cat.String(),
		Line:     line + 1,
		Column:   col + 1,
		Before:   before,
		After:    after,
	})
}
