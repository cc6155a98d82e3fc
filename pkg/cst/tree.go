package cst

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for tree edits.
var (
	ErrDetached = errors.New("cst: node is not attached to a parent")
	ErrAttached = errors.New("cst: replacement is already attached")
)

// Tree is a parsed compilation unit.
type Tree struct {
	Root *Node
	// Trailer is the text after the last token.
	Trailer string
}

// Render serializes the tree back to source text.
func (t *Tree) Render() string {
	var sb strings.Builder

	for _, leaf := range t.Root.Leaves() {
		sb.WriteString(leaf.Lead)
		sb.WriteString(leaf.Token)
	}

	sb.WriteString(t.Trailer)

	return sb.String()
}

// Replace puts repl in the place of old. The leading trivia of old moves to
// repl so surrounding formatting is unchanged.
func (t *Tree) Replace(old, repl *Node) error {
	parent := old.parent

	idx := old.Index()
	if idx < 0 {
		return fmt.Errorf("replace %s: %w", old.Kind, ErrDetached)
	}

	if repl.parent != nil {
		return fmt.Errorf("replace %s: %w", old.Kind, ErrAttached)
	}

	repl.FirstLeaf().Lead = old.LeadingTrivia()
	parent.Children[idx] = repl
	repl.parent = parent
	old.parent = nil

	return nil
}

// Remove detaches n. The following sibling takes over the leading trivia
// of n, so removing a line keeps the blank lines around it.
func (t *Tree) Remove(n *Node) error {
	idx := n.Index()
	if idx < 0 {
		return fmt.Errorf("remove %s: %w", n.Kind, ErrDetached)
	}

	parent := n.parent
	if idx+1 < len(parent.Children) {
		parent.Children[idx+1].FirstLeaf().Lead = n.LeadingTrivia()
	}

	parent.Children = append(parent.Children[:idx], parent.Children[idx+1:]...)
	n.parent = nil

	return nil
}

// Contains reports whether n is attached to this tree.
func (t *Tree) Contains(n *Node) bool {
	cur := n
	for cur.parent != nil {
		cur = cur.parent
	}

	return cur == t.Root
}

// Insert attaches n as the idx-th child of parent. The caller sets the
// leading trivia of n.
func (t *Tree) Insert(parent *Node, idx int, n *Node) error {
	if n.parent != nil {
		return fmt.Errorf("insert %s: %w", n.Kind, ErrAttached)
	}

	idx = min(max(idx, 0), len(parent.Children))
	parent.Children = append(parent.Children, nil)
	copy(parent.Children[idx+1:], parent.Children[idx:])
	parent.Children[idx] = n
	n.parent = parent

	return nil
}
