package cst

import (
	"unicode"
	"unicode/utf8"
)

// Java node kinds used by callers.
const (
	KindProgram              = "program"
	KindIdentifier           = "identifier"
	KindTypeIdentifier       = "type_identifier"
	KindMethodInvocation     = "method_invocation"
	KindArgumentList         = "argument_list"
	KindFieldAccess          = "field_access"
	KindImportDeclaration    = "import_declaration"
	KindPackageDeclaration   = "package_declaration"
	KindClassDeclaration     = "class_declaration"
	KindInterfaceDeclaration = "interface_declaration"
	KindEnumDeclaration      = "enum_declaration"
	KindRecordDeclaration    = "record_declaration"
	KindMethodDeclaration    = "method_declaration"
	KindConstructorDecl      = "constructor_declaration"
	KindFieldDeclaration     = "field_declaration"
	KindVariableDeclarator   = "variable_declarator"
	KindFormalParameter      = "formal_parameter"
	KindFormalParameters     = "formal_parameters"
	KindThis                 = "this"
)

// TypeDeclarationKinds lists node kinds that declare a named type.
var TypeDeclarationKinds = []string{
	KindClassDeclaration, KindInterfaceDeclaration, KindEnumDeclaration, KindRecordDeclaration,
	"annotation_type_declaration",
}

var javaKeywords = map[string]struct{}{
	"abstract": {}, "assert": {}, "boolean": {}, "break": {}, "byte": {}, "case": {}, "catch": {},
	"char": {}, "class": {}, "const": {}, "continue": {}, "default": {}, "do": {}, "double": {},
	"else": {}, "enum": {}, "extends": {}, "final": {}, "finally": {}, "float": {}, "for": {},
	"goto": {}, "if": {}, "implements": {}, "import": {}, "instanceof": {}, "int": {},
	"interface": {}, "long": {}, "native": {}, "new": {}, "package": {}, "private": {},
	"protected": {}, "public": {}, "return": {}, "short": {}, "static": {}, "strictfp": {},
	"super": {}, "switch": {}, "synchronized": {}, "this": {}, "throw": {}, "throws": {},
	"transient": {}, "try": {}, "void": {}, "volatile": {}, "while": {},
	"true": {}, "false": {}, "null": {}, "_": {},
}

// IsIdentifier reports whether s is a legal Java identifier that is not a
// reserved word or literal.
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}

	if _, reserved := javaKeywords[s]; reserved {
		return false
	}

	for i, r := range s {
		if r == utf8.RuneError {
			return false
		}

		start := unicode.IsLetter(r) || r == '_' || r == '$'
		if i == 0 && !start {
			return false
		}

		if !start && !unicode.IsDigit(r) {
			return false
		}
	}

	return true
}

// Expression ranks used to decide where parentheses are needed.
const (
	// RankPrimary expressions may be used as method receivers.
	RankPrimary = iota
	// RankUnary expressions may be operands of unary and binary operators.
	RankUnary
	// RankLoose expressions need parentheses anywhere but a full-expression
	// position.
	RankLoose
)

var primaryKinds = map[string]struct{}{
	KindIdentifier: {}, KindFieldAccess: {}, KindMethodInvocation: {}, "parenthesized_expression": {},
	"array_access": {}, "object_creation_expression": {}, KindThis: {}, "super": {}, "class_literal": {},
	"string_literal": {}, "character_literal": {}, "text_block": {}, "true": {}, "false": {},
	"null_literal": {}, "decimal_integer_literal": {}, "hex_integer_literal": {},
	"octal_integer_literal": {}, "binary_integer_literal": {}, "decimal_floating_point_literal": {},
	"hex_floating_point_literal": {},
}

var unaryKinds = map[string]struct{}{
	"unary_expression": {}, "cast_expression": {}, "update_expression": {},
}

// Rank classifies how tightly an expression binds.
func Rank(n *Node) int {
	if _, ok := primaryKinds[n.Kind]; ok {
		return RankPrimary
	}

	if _, ok := unaryKinds[n.Kind]; ok {
		return RankUnary
	}

	return RankLoose
}

// IsNumericLiteral reports whether n is an integer or floating point literal.
func IsNumericLiteral(n *Node) bool {
	switch n.Kind {
	case "decimal_integer_literal", "hex_integer_literal", "octal_integer_literal",
		"binary_integer_literal", "decimal_floating_point_literal", "hex_floating_point_literal":
		return true
	}

	return false
}

// MaxRank returns the loosest expression rank that can stand as child
// without parentheses.
func MaxRank(child *Node) int {
	parent := child.parent
	if parent == nil {
		return RankLoose
	}

	first := len(parent.Children) > 0 && parent.Children[0] == child

	switch parent.Kind {
	case KindMethodInvocation, KindFieldAccess:
		if first && len(parent.Children) > 1 && parent.Children[1].Kind == "." {
			return RankPrimary
		}
	case "array_access":
		if first {
			return RankPrimary
		}
	case "unary_expression", "cast_expression", "update_expression",
		"binary_expression", "instanceof_expression", "ternary_expression":
		return RankUnary
	}

	return RankLoose
}
