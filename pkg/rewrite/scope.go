package rewrite

import (
	"slices"

	"github.com/samuelghellereTR/payroll-refactor-tool/pkg/cst"
)

// Parents whose direct identifier children are the declared name.
var namedDeclarationKinds = []string{
	cst.KindMethodDeclaration, cst.KindConstructorDecl, "compact_constructor_declaration",
	cst.KindClassDeclaration, cst.KindInterfaceDeclaration, cst.KindEnumDeclaration,
	cst.KindRecordDeclaration, "annotation_type_declaration", "annotation_type_element_declaration",
	"enum_constant", cst.KindFormalParameter, "catch_formal_parameter", "labeled_statement",
	"inferred_parameters",
}

// Declarations that introduce variables rather than types or members.
var variableDeclarationKinds = []string{
	cst.KindVariableDeclarator, cst.KindFormalParameter, "catch_formal_parameter",
	"lambda_expression", "inferred_parameters", "enhanced_for_statement", "resource",
}

var executableKinds = []string{
	cst.KindMethodDeclaration, cst.KindConstructorDecl, "compact_constructor_declaration",
}

// isDeclName reports whether the identifier n is the name a declaration
// introduces.
func isDeclName(n *cst.Node) bool {
	p := n.Parent()
	if p == nil || n.Kind != cst.KindIdentifier {
		return false
	}

	switch p.Kind {
	case cst.KindVariableDeclarator, "lambda_expression":
		return n.Index() == 0
	case "enhanced_for_statement", "resource":
		idx := n.Index()
		for _, next := range p.Children[idx+1:] {
			switch next.Kind {
			case ":", "=":
				return true
			case "dimensions":
				continue
			}

			return false
		}

		return false
	}

	return slices.Contains(namedDeclarationKinds, p.Kind)
}

// isVariableDecl reports whether n names a field, local or parameter.
func isVariableDecl(n *cst.Node) bool {
	return isDeclName(n) && slices.Contains(variableDeclarationKinds, n.Parent().Kind)
}

// isMemberName reports whether n names a member after a qualifier or is
// part of a qualified name, as opposed to a standalone reference.
func isMemberName(n *cst.Node) bool {
	p := n.Parent()
	if p == nil {
		return false
	}

	idx := n.Index()

	switch p.Kind {
	case cst.KindMethodInvocation:
		return idx == len(p.Children)-2
	case cst.KindFieldAccess, "method_reference":
		return idx > 0
	case "element_value_pair":
		return idx == 0
	case "scoped_identifier", "scoped_type_identifier", "marker_annotation", "annotation",
		"break_statement", "continue_statement", cst.KindPackageDeclaration, cst.KindImportDeclaration:
		return true
	}

	return false
}

// isReference reports whether n is a bare identifier naming a variable,
// field or type in expression position.
func isReference(n *cst.Node) bool {
	return n.Kind == cst.KindIdentifier && !isDeclName(n) && !isMemberName(n)
}

// scopes caches the variable names declared in each executable.
type scopes map[*cst.Node]map[string]bool

func enclosingExecutable(n *cst.Node) *cst.Node {
	if exec := n.Ancestor(executableKinds...); exec != nil {
		return exec
	}

	return n.Ancestor("lambda_expression")
}

// declares reports whether the executable enclosing n declares name as a
// local or parameter.
func (s scopes) declares(n *cst.Node, name string) bool {
	exec := enclosingExecutable(n)
	if exec == nil {
		return false
	}

	names, ok := s[exec]
	if !ok {
		names = map[string]bool{}

		exec.Walk(func(c *cst.Node) bool {
			if isVariableDecl(c) {
				names[c.Token] = true
			}

			return true
		})

		s[exec] = names
	}

	return names[name]
}

func identifiers(root *cst.Node) []*cst.Node {
	var out []*cst.Node

	root.Walk(func(n *cst.Node) bool {
		if n.Kind == cst.KindIdentifier {
			out = append(out, n)
		}

		return true
	})

	return out
}
