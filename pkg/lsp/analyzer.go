package lsp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/samuelghellereTR/payroll-refactor-tool/pkg/cst"
	"github.com/samuelghellereTR/payroll-refactor-tool/pkg/naming"
	"github.com/samuelghellereTR/payroll-refactor-tool/pkg/rewrite"
)

const diagnosticSource = "payroll-refactor"

// Analyzer turns engine results into LSP diagnostics and hover text.
type Analyzer struct {
	parser *cst.Parser
	engine *rewrite.Engine
}

// NewAnalyzer creates an Analyzer.
func NewAnalyzer(parser *cst.Parser, engine *rewrite.Engine) *Analyzer {
	return &Analyzer{parser: parser, engine: engine}
}

// Diagnose reports one diagnostic per pending transformation and skipped
// rewrite. A syntax error yields a single error diagnostic.
func (a *Analyzer) Diagnose(ctx context.Context, text string) ([]protocol.Diagnostic, error) {
	tree, err := a.parser.Parse(ctx, []byte(text))
	if err != nil {
		var syn *cst.SyntaxError
		if errors.As(err, &syn) {
			return []protocol.Diagnostic{
				diagnostic(syn.Pos.Line, syn.Pos.Column, 1, protocol.DiagnosticSeverityError, "syntax", syn.Error()),
			}, nil
		}

		return nil, fmt.Errorf("parse: %w", err)
	}

	rep, err := a.engine.ApplyAll(ctx, tree)
	if err != nil {
		return nil, fmt.Errorf("rewrite: %w", err)
	}

	diags := make([]protocol.Diagnostic, 0, len(rep.Changes)+len(rep.Warnings))

	for _, c := range rep.Changes {
		first, _, _ := strings.Cut(c.Before, "\n")
		msg := fmt.Sprintf("%s: replace with %s", c.Category, c.After)
		diags = append(diags,
			diagnostic(c.Line-1, c.Column-1, len(first), protocol.DiagnosticSeverityInformation, c.Rule, msg))
	}

	for _, w := range rep.Warnings {
		var line, col int
		if _, scanErr := fmt.Sscanf(w, "%d:%d:", &line, &col); scanErr != nil {
			line, col = 1, 1
		}

		diags = append(diags, diagnostic(line-1, col-1, 1, protocol.DiagnosticSeverityWarning, "skipped", w))
	}

	return diags, nil
}

// Describe returns markdown hover text for a legacy identifier, or "" when
// word is not a rename candidate in any role.
func (a *Analyzer) Describe(word string) string {
	tr := a.engine.Translator()
	if tr == nil || word == "" {
		return ""
	}

	var sb strings.Builder

	for _, role := range []naming.Role{naming.RoleType, naming.RoleMethod, naming.RoleField, naming.RoleParameter} {
		if !tr.IsLegacy(word, role) {
			continue
		}

		got, err := tr.Translate(word, role)
		if err != nil || got == word {
			continue
		}

		fmt.Fprintf(&sb, "- %s: `%s`\n", role, got)
	}

	if sb.Len() == 0 {
		return ""
	}

	return fmt.Sprintf("**%s** is a legacy identifier.\n\n%s", word, sb.String())
}

func diagnostic(line, col, width int, severity protocol.DiagnosticSeverity, code, msg string) protocol.Diagnostic {
	line, col = max(line, 0), max(col, 0)
	source := diagnosticSource

	return protocol.Diagnostic{
		Range: protocol.Range{
			Start: protocol.Position{Line: protocol.UInteger(line), Character: protocol.UInteger(col)},
			End:   protocol.Position{Line: protocol.UInteger(line), Character: protocol.UInteger(col + max(width, 1))},
		},
		Severity: &severity,
		Code:     &protocol.IntegerOrString{Value: code},
		Source:   &source,
		Message:  msg,
	}
}

// wordAt returns the Java identifier at the given line and byte offset.
func wordAt(text string, line, character int) string {
	lines := strings.Split(text, "\n")
	if line < 0 || line >= len(lines) {
		return ""
	}

	lineText := lines[line]
	character = min(max(character, 0), len(lineText))

	start := character
	for start > 0 && isWordChar(lineText[start-1]) {
		start--
	}

	end := character
	for end < len(lineText) && isWordChar(lineText[end]) {
		end++
	}

	return lineText[start:end]
}

func isWordChar(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') || ch == '_' || ch == '$'
}
