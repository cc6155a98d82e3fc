package refactor

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// LineDiff renders a line-level diff between before and after, headed by
// the two paths. Equal lines are omitted.
func LineDiff(fromPath, toPath, before, after string) string {
	if before == after {
		return ""
	}

	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var sb strings.Builder

	sb.WriteString("--- " + fromPath + "\n")
	sb.WriteString("+++ " + toPath + "\n")

	for _, d := range diffs {
		var prefix string

		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		case diffmatchpatch.DiffEqual:
			continue
		}

		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}

			sb.WriteString(prefix + line)

			if !strings.HasSuffix(line, "\n") {
				sb.WriteString("\n")
			}
		}
	}

	return sb.String()
}
