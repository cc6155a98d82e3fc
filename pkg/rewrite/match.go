package rewrite

import (
	"slices"
	"strings"

	"github.com/samuelghellereTR/payroll-refactor-tool/pkg/cst"
)

// call is the decomposed shape of a method invocation.
type call struct {
	node     *cst.Node
	receiver *cst.Node
	name     string
	args     *cst.Node
}

// asCall decomposes n when it is a plain invocation: "name(args)" or
// "receiver.name(args)". Calls with explicit type arguments are rejected.
func asCall(n *cst.Node) (call, bool) {
	if n.Kind != cst.KindMethodInvocation || len(n.Children) < 2 {
		return call{}, false
	}

	args := n.Children[len(n.Children)-1]
	name := n.Children[len(n.Children)-2]

	if args.Kind != cst.KindArgumentList || name.Kind != cst.KindIdentifier {
		return call{}, false
	}

	switch len(n.Children) {
	case 2:
		return call{node: n, name: name.Token, args: args}, true
	case 4:
		if n.Children[1].Kind != "." {
			return call{}, false
		}

		return call{node: n, receiver: n.Children[0], name: name.Token, args: args}, true
	}

	return call{}, false
}

func (c call) arguments() []*cst.Node {
	return c.args.Operands()
}

// callShape recognizes wrapper invocations under the configured names.
type callShape struct {
	receivers []string
}

// wrapper reports whether n calls the legacy helper name, unqualified or
// through one of the helper receivers, with no comments between arguments.
func (s callShape) wrapper(n *cst.Node, name string) (call, bool) {
	c, ok := asCall(n)
	if !ok || c.name != name || c.args.HasComment() {
		return call{}, false
	}

	if c.receiver != nil && !slices.Contains(s.receivers, c.receiver.Canonical()) {
		return call{}, false
	}

	return c, true
}

// assignable reports whether n may stand on the left of an assignment.
func assignable(n *cst.Node) bool {
	switch n.Kind {
	case cst.KindIdentifier, cst.KindFieldAccess, "array_access":
		return true
	}

	return false
}

// receiverText renders n so it can be followed by ".method(...)".
func receiverText(n *cst.Node) string {
	if cst.Rank(n) == cst.RankPrimary {
		return n.Text()
	}

	return "(" + n.Text() + ")"
}

// decimalReceiver renders a decimal operand as a method receiver. Numeric
// literals become exact BigDecimal values built from their digits. Literal
// forms that cannot be expressed exactly are rejected.
func decimalReceiver(n *cst.Node) (string, []string, bool) {
	switch n.Kind {
	case "null_literal", "hex_integer_literal", "octal_integer_literal",
		"binary_integer_literal", "hex_floating_point_literal", "character_literal", "true", "false":
		return "", nil, false
	case "decimal_integer_literal", "decimal_floating_point_literal":
		digits := literalDigits(n.Token)
		if isZero(digits) && n.Kind == "decimal_integer_literal" {
			return "BigDecimal.ZERO", []string{importBigDecimal}, true
		}

		return `new BigDecimal("` + digits + `")`, []string{importBigDecimal}, true
	case "string_literal":
		return "new BigDecimal(" + n.Text() + ")", []string{importBigDecimal}, true
	case "unary_expression":
		return signedLiteral(n)
	}

	if primitive(n) {
		return "", nil, false
	}

	return receiverText(n), nil, true
}

// signedLiteral renders "-1.5" or "+2" as an exact BigDecimal. Any other
// unary expression yields a primitive and is rejected.
func signedLiteral(n *cst.Node) (string, []string, bool) {
	if len(n.Children) != 2 {
		return "", nil, false
	}

	sign, operand := n.Children[0].Kind, n.Children[1]
	if sign != "-" && sign != "+" {
		return "", nil, false
	}

	if operand.Kind != "decimal_integer_literal" && operand.Kind != "decimal_floating_point_literal" {
		return "", nil, false
	}

	digits := literalDigits(operand.Token)
	if isZero(digits) && operand.Kind == "decimal_integer_literal" {
		return "BigDecimal.ZERO", []string{importBigDecimal}, true
	}

	if sign == "-" {
		digits = "-" + digits
	}

	return `new BigDecimal("` + digits + `")`, []string{importBigDecimal}, true
}

var primitiveTypeKinds = map[string]struct{}{
	"integral_type": {}, "floating_point_type": {}, "boolean_type": {},
}

// primitive reports whether n certainly evaluates to a primitive value, so
// it cannot receive a method call.
func primitive(n *cst.Node) bool {
	switch n.Kind {
	case "true", "false", "character_literal", "unary_expression", "update_expression":
		return true
	case "cast_expression":
		for _, c := range n.Children {
			if _, ok := primitiveTypeKinds[c.Kind]; ok {
				return true
			}
		}
	}

	return cst.IsNumericLiteral(n)
}

func literalDigits(tok string) string {
	tok = strings.ReplaceAll(tok, "_", "")

	return strings.TrimRight(tok, "lLdDfF")
}

func isZero(digits string) bool {
	return digits != "" && strings.Trim(digits, "0") == ""
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}

	for i := range len(s) {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}

	return true
}
