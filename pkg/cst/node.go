// Package cst provides a mutable, lossless concrete syntax tree for Java
// source built on tree-sitter.
//
// Every leaf keeps the exact text that precedes it, so rendering an
// unmodified tree reproduces the input byte for byte. Edits are made with
// Tree.Replace, Tree.Remove and Tree.Insert and keep surrounding trivia.
package cst

import (
	"strings"
)

// Comment node kinds.
const (
	KindLineComment  = "line_comment"
	KindBlockComment = "block_comment"
)

// Point is a zero-based source position.
type Point struct {
	Line   int
	Column int
}

// Node is one element of the concrete syntax tree. Interior nodes carry
// children; leaves carry their token text and the trivia preceding it.
type Node struct {
	// Kind is the grammar node type, e.g. "method_invocation" or "(".
	Kind string
	// Token is the source text of a leaf.
	Token string
	// Lead is the whitespace (and any unclaimed text) before a leaf.
	Lead string
	// Named reports whether the grammar names this node.
	Named bool
	// Start is the original position. Nodes built after parsing carry the
	// position inside their snippet.
	Start Point

	Children []*Node
	parent   *Node
}

// Parent returns the enclosing node, or nil for a root or detached node.
func (n *Node) Parent() *Node {
	return n.parent
}

// IsLeaf reports whether n has no children.
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// IsComment reports whether n is a line or block comment.
func (n *Node) IsComment() bool {
	return n.Kind == KindLineComment || n.Kind == KindBlockComment
}

// Index returns the position of n among its parent's children, or -1.
func (n *Node) Index() int {
	if n.parent == nil {
		return -1
	}

	for i, c := range n.parent.Children {
		if c == n {
			return i
		}
	}

	return -1
}

// FirstLeaf returns the leftmost leaf under n.
func (n *Node) FirstLeaf() *Node {
	cur := n
	for !cur.IsLeaf() {
		cur = cur.Children[0]
	}

	return cur
}

// LeadingTrivia returns the trivia before the first token of n.
func (n *Node) LeadingTrivia() string {
	return n.FirstLeaf().Lead
}

// Leaves returns the leaves under n in source order.
func (n *Node) Leaves() []*Node {
	var out []*Node

	n.Walk(func(c *Node) bool {
		if c.IsLeaf() {
			out = append(out, c)
		}

		return true
	})

	return out
}

// Walk visits n and its descendants in pre-order. Returning false from fn
// skips the children of the visited node.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}

	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// PostOrder returns n and its descendants, children before parents.
func (n *Node) PostOrder() []*Node {
	var out []*Node

	var visit func(*Node)

	visit = func(c *Node) {
		for _, cc := range c.Children {
			visit(cc)
		}

		out = append(out, c)
	}

	visit(n)

	return out
}

// Text renders n without its own leading trivia.
func (n *Node) Text() string {
	var sb strings.Builder

	for i, leaf := range n.Leaves() {
		if i > 0 {
			sb.WriteString(leaf.Lead)
		}

		sb.WriteString(leaf.Token)
	}

	return sb.String()
}

// Canonical renders n with whitespace and comments removed. Two adjacent
// word tokens are separated by a single space. Structurally identical
// expressions have equal canonical forms regardless of formatting.
func (n *Node) Canonical() string {
	var (
		sb   strings.Builder
		prev string
	)

	for _, leaf := range n.Leaves() {
		if leaf.IsComment() || leaf.Token == "" {
			continue
		}

		if prev != "" && isWordByte(prev[len(prev)-1]) && isWordByte(leaf.Token[0]) {
			sb.WriteByte(' ')
		}

		sb.WriteString(leaf.Token)
		prev = leaf.Token
	}

	return sb.String()
}

// Child returns the first direct child of the given kind.
func (n *Node) Child(kind string) *Node {
	for _, c := range n.Children {
		if c.Kind == kind {
			return c
		}
	}

	return nil
}

// ChildrenOf returns the direct children of the given kind.
func (n *Node) ChildrenOf(kind string) []*Node {
	var out []*Node

	for _, c := range n.Children {
		if c.Kind == kind {
			out = append(out, c)
		}
	}

	return out
}

// Operands returns the named, non-comment direct children.
func (n *Node) Operands() []*Node {
	var out []*Node

	for _, c := range n.Children {
		if c.Named && !c.IsComment() {
			out = append(out, c)
		}
	}

	return out
}

// HasComment reports whether a direct child of n is a comment.
func (n *Node) HasComment() bool {
	for _, c := range n.Children {
		if c.IsComment() {
			return true
		}
	}

	return false
}

// Ancestor returns the nearest enclosing node of one of kinds.
func (n *Node) Ancestor(kinds ...string) *Node {
	for p := n.parent; p != nil; p = p.parent {
		for _, k := range kinds {
			if p.Kind == k {
				return p
			}
		}
	}

	return nil
}

// SetToken replaces the token text of a leaf, keeping its leading trivia.
func (n *Node) SetToken(token string) {
	n.Token = token
}

func isWordByte(b byte) bool {
	return b == '_' || b == '$' || b >= 0x80 ||
		(b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func adopt(parent *Node) {
	for _, c := range parent.Children {
		c.parent = parent
	}
}
