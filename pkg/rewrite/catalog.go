package rewrite

import (
	"fmt"
	"strconv"

	"github.com/samuelghellereTR/payroll-refactor-tool/pkg/cst"
)

// Native BigDecimal methods each arithmetic wrapper maps to.
const (
	methodAdd      = "add"
	methodSubtract = "subtract"
	methodMultiply = "multiply"
	methodDivide   = "divide"
)

type catalogBuilder struct {
	opts  Options
	shape callShape
	ops   map[string]string
}

// DefaultCatalog builds the rule catalog for opts. Rules are listed in the
// order they run: within the math category the identity-gated rescale form
// precedes the unconditional operator forms.
func DefaultCatalog(opts Options) (*Catalog, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	opts = opts.clone()
	w := opts.Wrappers

	b := catalogBuilder{
		opts:  opts,
		shape: callShape{receivers: opts.HelperReceivers},
		ops: map[string]string{
			w.Add:      methodAdd,
			w.Subtract: methodSubtract,
			w.Multiply: methodMultiply,
			w.Divide:   methodDivide,
		},
	}

	return NewCatalog(
		b.precisionRule(),
		b.rescaleRule(),
		b.operatorRule("math-add", w.Add),
		b.operatorRule("math-subtract", w.Subtract),
		b.operatorRule("math-multiply", w.Multiply),
		b.operatorRule("math-divide", w.Divide),
		b.truthyRule(),
		b.negationRule(),
		b.equalityRule(),
		b.typeWrapperRule(),
	), nil
}

func (b catalogBuilder) rounding() string {
	return "RoundingMode." + b.opts.RoundingMode
}

func (b catalogBuilder) precisionRule() Rule {
	args := func(a []*cst.Node) bool {
		switch len(a) {
		case 1:
			return true
		case 2:
			return a[1].Kind == "decimal_integer_literal" && isDigits(a[1].Token)
		}

		return false
	}

	return Rule{
		Name:      "precision-wrap",
		Category:  CategoryPrecision,
		Kind:      cst.KindMethodInvocation,
		Arguments: args,
		Match: func(n *cst.Node) (MatchResult, bool) {
			c, ok := b.shape.wrapper(n, b.opts.Wrappers.Precision)
			if !ok {
				return MatchResult{}, false
			}

			operands := c.arguments()
			if !args(operands) {
				return MatchResult{}, false
			}

			scale := strconv.Itoa(b.opts.DefaultScale)
			if len(operands) == 2 {
				scale = operands[1].Token
			}

			return MatchResult{Node: n, Target: operands[0], Operands: operands, Scale: scale}, true
		},
		Build: func(m MatchResult) (Replacement, error) {
			recv, imports, ok := b.precisionValue(m.Target)
			if !ok {
				return Replacement{}, fmt.Errorf("%w: %s", errNotDecimal, m.Target.Text())
			}

			return Replacement{
				Text:    recv + ".setScale(" + m.Scale + ", " + b.rounding() + ")",
				Imports: append(imports, importRoundingMode),
			}, nil
		},
	}
}

// precisionValue keeps identity constants as written and converts
// everything else through decimalReceiver.
func (b catalogBuilder) precisionValue(v *cst.Node) (string, []string, bool) {
	canonical := v.Canonical()
	for _, ident := range b.opts.IdentityConstants {
		if canonical == ident {
			return v.Text(), nil, true
		}
	}

	return decimalReceiver(v)
}

func (b catalogBuilder) rescaleRule() Rule {
	args := func(a []*cst.Node) bool {
		return len(a) == 2 && assignable(a[0])
	}

	return Rule{
		Name:      "rescale-assign",
		Category:  CategoryMath,
		Kind:      cst.KindMethodInvocation,
		Arguments: args,
		Match: func(n *cst.Node) (MatchResult, bool) {
			c, ok := b.shape.wrapper(n, b.opts.Wrappers.Rescale)
			if !ok || !args(c.arguments()) {
				return MatchResult{}, false
			}

			target, inner := c.arguments()[0], c.arguments()[1]

			op, ok := b.operatorCall(inner)
			if !ok {
				return MatchResult{}, false
			}

			operands := op.arguments()
			if len(operands) != 2 || operands[0].Canonical() != target.Canonical() {
				return MatchResult{}, false
			}

			return MatchResult{Node: n, Target: target, Operands: []*cst.Node{inner, operands[1]}}, true
		},
		Build: func(m MatchResult) (Replacement, error) {
			op, _ := asCall(m.Operands[0])
			method := b.ops[op.name]
			target := m.Target.Text()

			text := target + " = " + target + "." + method + "(" + m.Operands[1].Text()

			var imports []string
			if method == methodDivide {
				text += ", " + b.rounding()
				imports = append(imports, importRoundingMode)
			}

			return Replacement{Text: text + ")", Imports: imports}, nil
		},
	}
}

func (b catalogBuilder) operatorCall(n *cst.Node) (call, bool) {
	c, ok := asCall(n)
	if !ok {
		return call{}, false
	}

	if _, known := b.ops[c.name]; !known {
		return call{}, false
	}

	return b.shape.wrapper(n, c.name)
}

// insideRescale reports whether n is the operation argument of a rescale
// wrapper. Such calls are only rewritten through the gated rescale rule.
func (b catalogBuilder) insideRescale(n *cst.Node) bool {
	args := n.Parent()
	if args == nil || args.Kind != cst.KindArgumentList || args.Parent() == nil {
		return false
	}

	c, ok := b.shape.wrapper(args.Parent(), b.opts.Wrappers.Rescale)
	if !ok {
		return false
	}

	operands := c.arguments()

	return len(operands) == 2 && operands[1] == n
}

func (b catalogBuilder) operatorRule(name, wrapper string) Rule {
	method := b.ops[wrapper]
	args := func(a []*cst.Node) bool {
		return len(a) == 2
	}

	return Rule{
		Name:      name,
		Category:  CategoryMath,
		Kind:      cst.KindMethodInvocation,
		Arguments: args,
		Match: func(n *cst.Node) (MatchResult, bool) {
			c, ok := b.shape.wrapper(n, wrapper)
			if !ok || !args(c.arguments()) || b.insideRescale(n) {
				return MatchResult{}, false
			}

			operands := c.arguments()

			return MatchResult{Node: n, Target: operands[0], Operands: operands}, true
		},
		Build: func(m MatchResult) (Replacement, error) {
			recv, imports, ok := decimalReceiver(m.Operands[0])
			if !ok {
				return Replacement{}, fmt.Errorf("%w: %s", errNotDecimal, m.Operands[0].Text())
			}

			text := recv + "." + method + "(" + m.Operands[1].Text()
			if method == methodDivide {
				text += ", " + b.rounding()
				imports = append(imports, importRoundingMode)
			}

			return Replacement{Text: text + ")", Imports: imports}, nil
		},
	}
}

func (b catalogBuilder) truthyRule() Rule {
	return b.unaryRule("truthy-unwrap", b.opts.Wrappers.Truthy, func(x *cst.Node) string {
		return x.Text()
	})
}

func (b catalogBuilder) negationRule() Rule {
	return b.unaryRule("negation-unwrap", b.opts.Wrappers.Negate, func(x *cst.Node) string {
		if cst.Rank(x) > cst.RankUnary {
			return "!(" + x.Text() + ")"
		}

		return "!" + x.Text()
	})
}

func (b catalogBuilder) unaryRule(name, wrapper string, render func(*cst.Node) string) Rule {
	args := func(a []*cst.Node) bool {
		return len(a) == 1
	}

	return Rule{
		Name:      name,
		Category:  CategoryBoolean,
		Kind:      cst.KindMethodInvocation,
		Arguments: args,
		Match: func(n *cst.Node) (MatchResult, bool) {
			c, ok := b.shape.wrapper(n, wrapper)
			if !ok || !args(c.arguments()) {
				return MatchResult{}, false
			}

			return MatchResult{Node: n, Target: c.arguments()[0], Operands: c.arguments()}, true
		},
		Build: func(m MatchResult) (Replacement, error) {
			return Replacement{Text: render(m.Target)}, nil
		},
	}
}

func (b catalogBuilder) equalityRule() Rule {
	args := func(a []*cst.Node) bool {
		return len(a) == 2 && a[0].Kind != "null_literal" && !primitive(a[0])
	}

	return Rule{
		Name:      "equality-unwrap",
		Category:  CategoryBoolean,
		Kind:      cst.KindMethodInvocation,
		Arguments: args,
		Match: func(n *cst.Node) (MatchResult, bool) {
			c, ok := b.shape.wrapper(n, b.opts.Wrappers.Equal)
			if !ok || !args(c.arguments()) {
				return MatchResult{}, false
			}

			return MatchResult{Node: n, Target: c.arguments()[0], Operands: c.arguments()}, true
		},
		Build: func(m MatchResult) (Replacement, error) {
			return Replacement{
				Text: receiverText(m.Operands[0]) + ".equals(" + m.Operands[1].Text() + ")",
			}, nil
		},
	}
}

func (b catalogBuilder) typeWrapperRule() Rule {
	return Rule{
		Name:     "type-wrapper",
		Category: CategoryTypeWrapper,
		Kind:     cst.KindTypeIdentifier,
		Match: func(n *cst.Node) (MatchResult, bool) {
			if _, ok := b.opts.TypeReplacements[n.Token]; !ok {
				return MatchResult{}, false
			}

			if p := n.Parent(); p != nil && p.Kind == "scoped_type_identifier" {
				return MatchResult{}, false
			}

			return MatchResult{Node: n, Target: n}, true
		},
		Build: func(m MatchResult) (Replacement, error) {
			standard := b.opts.TypeReplacements[m.Node.Token]

			return Replacement{
				Text:        cst.SimpleName(standard),
				Imports:     []string{standard},
				DropImports: []string{m.Node.Token},
			}, nil
		},
	}
}
