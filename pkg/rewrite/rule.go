package rewrite

import (
	"slices"

	"github.com/samuelghellereTR/payroll-refactor-tool/pkg/cst"
)

// MatchResult captures the sub-expressions a builder needs.
type MatchResult struct {
	// Node is the node that will be replaced.
	Node *cst.Node
	// Target is the rescaled or receiving expression, when the rule has one.
	Target *cst.Node
	// Operands are the wrapper call arguments in order.
	Operands []*cst.Node
	// Scale is the explicit scale literal of a precision wrapper.
	Scale string
}

// Replacement is the source text a builder produces together with the
// imports that text relies on.
type Replacement struct {
	Text    string
	Imports []string
	// DropImports names legacy imports made unused by the replacement.
	DropImports []string
}

// Rule is one structural rewrite. Rules are immutable once built.
type Rule struct {
	Name     string
	Category Category
	// Kind is the node kind the rule inspects.
	Kind string
	// Arguments validates the wrapper call arguments before Match runs.
	Arguments func(args []*cst.Node) bool
	// Match tests the shape and identity predicates of the rule.
	Match func(n *cst.Node) (MatchResult, bool)
	// Build produces the replacement for a match.
	Build func(m MatchResult) (Replacement, error)
}

// Catalog is an ordered set of rules.
type Catalog struct {
	rules []Rule
}

// NewCatalog copies rules into a Catalog.
func NewCatalog(rules ...Rule) *Catalog {
	return &Catalog{rules: slices.Clone(rules)}
}

// Rules returns the rules of category c in declared order.
func (c *Catalog) Rules(cat Category) []Rule {
	var out []Rule

	for _, r := range c.rules {
		if r.Category == cat {
			out = append(out, r)
		}
	}

	return out
}

// All returns every rule in declared order.
func (c *Catalog) All() []Rule {
	return slices.Clone(c.rules)
}

// Len returns the number of rules.
func (c *Catalog) Len() int {
	return len(c.rules)
}

// Applies runs the kind, argument and shape predicates of r against n.
func (r Rule) Applies(n *cst.Node) (MatchResult, bool) {
	if n.Kind != r.Kind {
		return MatchResult{}, false
	}

	return r.Match(n)
}
