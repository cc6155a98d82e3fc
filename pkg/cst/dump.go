package cst

import (
	"fmt"
	"io"
	"strings"
)

// Dump writes an indented outline of n, one node per line with its start
// position. Leaves show their token. With namedOnly, anonymous leaves such
// as punctuation are omitted.
func Dump(w io.Writer, n *Node, namedOnly bool) error {
	var sb strings.Builder

	dump(&sb, n, 0, namedOnly)

	_, err := io.WriteString(w, sb.String())
	if err != nil {
		return fmt.Errorf("dump: %w", err)
	}

	return nil
}

func dump(sb *strings.Builder, n *Node, depth int, namedOnly bool) {
	if n == nil || (namedOnly && !n.Named && n.IsLeaf()) {
		return
	}

	fmt.Fprintf(sb, "%s%s [%d:%d]", strings.Repeat("  ", depth), n.Kind, n.Start.Line+1, n.Start.Column+1)

	if n.IsLeaf() {
		fmt.Fprintf(sb, " %q", n.Token)
	}

	sb.WriteByte('\n')

	for _, c := range n.Children {
		dump(sb, c, depth+1, namedOnly)
	}
}
