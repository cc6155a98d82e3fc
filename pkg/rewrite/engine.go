package rewrite

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/samuelghellereTR/payroll-refactor-tool/pkg/cst"
	"github.com/samuelghellereTR/payroll-refactor-tool/pkg/naming"
)

// Sentinel errors for replacement construction.
var (
	// ErrUnconstructible wraps every reason a replacement was rejected.
	ErrUnconstructible = errors.New("unconstructible replacement")
	// ErrNotStatement is returned when a replacement would leave an
	// expression statement that Java does not accept.
	ErrNotStatement = errors.New("replacement is not a statement expression")

	errNotDecimal = errors.New("operand has no exact decimal form")
	errNotIdent   = errors.New("not a valid identifier")
)

const staticPrefix = "static "

var statementExpressionKinds = []string{
	"assignment_expression", cst.KindMethodInvocation, "object_creation_expression", "update_expression",
}

// Engine applies the rule catalog and identifier renaming to syntax trees.
// An Engine is immutable and may be shared by concurrent workers; each tree
// must only be handed to one ApplyAll call at a time.
type Engine struct {
	parser     *cst.Parser
	catalog    *Catalog
	translator *naming.Translator
	opts       Options
	logger     *slog.Logger
}

// NewEngine builds an engine from opts. A nil translator disables the
// renaming categories; a nil logger discards output.
func NewEngine(parser *cst.Parser, opts Options, translator *naming.Translator, logger *slog.Logger) (*Engine, error) {
	catalog, err := DefaultCatalog(opts)
	if err != nil {
		return nil, fmt.Errorf("build catalog: %w", err)
	}

	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Engine{
		parser:     parser,
		catalog:    catalog,
		translator: translator,
		opts:       opts.clone(),
		logger:     logger,
	}, nil
}

// Catalog returns the engine's rule catalog.
func (e *Engine) Catalog() *Catalog {
	return e.catalog
}

// Translator returns the engine's name translator, which may be nil.
func (e *Engine) Translator() *naming.Translator {
	return e.translator
}

// ApplyAll runs every category once over tree, mutating it in place. Rule
// failures become warnings; only cancellation of ctx returns an error.
func (e *Engine) ApplyAll(ctx context.Context, tree *cst.Tree) (*Report, error) {
	rep := NewReport()
	local := declaredMethodNames(tree.Root)

	for _, cat := range Categories {
		if err := ctx.Err(); err != nil {
			return rep, fmt.Errorf("rewrite %s: %w", cat, err)
		}

		switch cat {
		case CategoryRenameType, CategoryRenameMethod, CategoryRenameField, CategoryRenameParameter:
			if e.translator == nil || !e.opts.Rename {
				continue
			}

			newRenamer(tree, e.translator, rep).run(cat)
		default:
			e.applyCategory(ctx, tree, cat, local, rep)
		}
	}

	e.pruneWrapperImports(tree)

	if rep.Changed() {
		rep.FilesProcessed = 1
	}

	e.logger.DebugContext(ctx, "rewrite pass complete",
		"transformations", rep.TransformationsApplied, "warnings", len(rep.Warnings))

	return rep, nil
}

// applyCategory collects candidates before any mutation and visits them
// innermost first, so nested wrappers compose within one pass and freshly
// built nodes are never revisited.
func (e *Engine) applyCategory(ctx context.Context, tree *cst.Tree, cat Category, local map[string]bool, rep *Report) {
	rules := e.catalog.Rules(cat)
	if len(rules) == 0 {
		return
	}

	for _, n := range tree.Root.PostOrder() {
		if !tree.Contains(n) || shadowedWrapper(n, local) {
			continue
		}

		for _, rule := range rules {
			m, ok := rule.Applies(n)
			if !ok {
				continue
			}

			err := e.apply(ctx, tree, rule, m, rep)
			if err != nil {
				rep.Warn("%d:%d: %s: %v", n.Start.Line+1, n.Start.Column+1, rule.Name, err)
				e.logger.DebugContext(ctx, "rewrite skipped", "rule", rule.Name, "error", err)
			}

			break
		}
	}
}

func (e *Engine) apply(ctx context.Context, tree *cst.Tree, rule Rule, m MatchResult, rep *Report) error {
	repl, err := rule.Build(m)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnconstructible, err)
	}

	before := m.Node.Text()
	start := m.Node.Start

	if m.Node.IsLeaf() {
		if !cst.IsIdentifier(repl.Text) {
			return fmt.Errorf("%w: %q: %w", ErrUnconstructible, repl.Text, errNotIdent)
		}

		m.Node.SetToken(repl.Text)
	} else {
		node, buildErr := e.construct(ctx, m.Node, repl.Text)
		if buildErr != nil {
			return buildErr
		}

		if err = tree.Replace(m.Node, node); err != nil {
			return fmt.Errorf("%w: %w", ErrUnconstructible, err)
		}
	}

	for _, imp := range repl.Imports {
		if _, err = e.parser.EnsureImport(ctx, tree, imp); err != nil {
			rep.Warn("%d:%d: %s: import %s: %v", start.Line+1, start.Column+1, rule.Name, imp, err)
		}
	}

	for _, legacy := range repl.DropImports {
		dropTypeImport(tree, legacy)
	}

	rep.record(rule.Name, rule.Category, start.Line, start.Column, before, repl.Text)

	return nil
}

// construct parses replacement text for the position of old, adding
// parentheses when the surrounding expression binds tighter than the
// replacement.
func (e *Engine) construct(ctx context.Context, old *cst.Node, text string) (*cst.Node, error) {
	node, err := e.parser.ParseExpression(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnconstructible, err)
	}

	if cst.Rank(node) > cst.MaxRank(old) {
		node, err = e.parser.ParseExpression(ctx, "("+text+")")
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnconstructible, err)
		}
	}

	if p := old.Parent(); p != nil && p.Kind == "expression_statement" &&
		!slices.Contains(statementExpressionKinds, node.Kind) {
		return nil, fmt.Errorf("%w: %w: %s", ErrUnconstructible, ErrNotStatement, text)
	}

	return node, nil
}

// shadowedWrapper reports whether n is an unqualified call to a method the
// compilation unit declares itself, which is never a legacy helper.
func shadowedWrapper(n *cst.Node, local map[string]bool) bool {
	c, ok := asCall(n)

	return ok && c.receiver == nil && local[c.name]
}

func declaredMethodNames(root *cst.Node) map[string]bool {
	names := map[string]bool{}

	root.Walk(func(n *cst.Node) bool {
		if n.Kind == cst.KindMethodDeclaration {
			if id := n.Child(cst.KindIdentifier); id != nil {
				names[id.Token] = true
			}
		}

		return true
	})

	return names
}

// pruneWrapperImports removes static imports of wrapper helpers that no
// call in the unit uses any more.
func (e *Engine) pruneWrapperImports(tree *cst.Tree) {
	used := map[string]bool{}

	tree.Root.Walk(func(n *cst.Node) bool {
		if c, ok := asCall(n); ok && c.receiver == nil {
			used[c.name] = true
		}

		return true
	})

	wrappers := e.opts.Wrappers.names()

	for _, imp := range tree.Imports() {
		path := cst.ImportPath(imp)
		if !strings.HasPrefix(path, staticPrefix) {
			continue
		}

		name := cst.SimpleName(path)
		if slices.Contains(wrappers, name) && !used[name] {
			_ = tree.Remove(imp) //nolint:errcheck // imp is a direct child of the root
		}
	}
}

// dropTypeImport removes single-type imports of legacy once no type
// reference to it is left.
func dropTypeImport(tree *cst.Tree, legacy string) {
	remaining := false

	tree.Root.Walk(func(n *cst.Node) bool {
		if n.Kind == cst.KindTypeIdentifier && n.Token == legacy {
			remaining = true
		}

		return !remaining
	})

	if remaining {
		return
	}

	for _, imp := range tree.Imports() {
		path := cst.ImportPath(imp)
		if cst.SimpleName(path) == legacy && !strings.HasPrefix(path, staticPrefix) {
			_ = tree.Remove(imp) //nolint:errcheck // imp is a direct child of the root
		}
	}
}
