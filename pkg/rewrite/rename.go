package rewrite

import (
	"fmt"
	"slices"
	"strings"

	"github.com/samuelghellereTR/payroll-refactor-tool/pkg/cst"
	"github.com/samuelghellereTR/payroll-refactor-tool/pkg/naming"
)

// Translation is a pure function of the legacy name, so references to
// declarations in other files receive the same new name they do.
type renamer struct {
	tree     *cst.Tree
	tr       *naming.Translator
	rep      *Report
	scopes   scopes
	plan     map[string]string
	taken    map[string]string
	rejected map[string]bool
	first    map[string]*cst.Node
	order    []string
}

func newRenamer(tree *cst.Tree, tr *naming.Translator, rep *Report) *renamer {
	return &renamer{tree: tree, tr: tr, rep: rep, scopes: scopes{}}
}

func (r *renamer) reset() {
	r.plan = map[string]string{}
	r.taken = map[string]string{}
	r.rejected = map[string]bool{}
	r.first = map[string]*cst.Node{}
	r.order = nil
}

func (r *renamer) run(cat Category) {
	r.reset()

	switch cat {
	case CategoryRenameType:
		r.renameTypes()
	case CategoryRenameMethod:
		r.renameMethods()
	case CategoryRenameField:
		r.renameFields()
	case CategoryRenameParameter:
		r.renameParameters()
	case CategoryPrecision, CategoryMath, CategoryBoolean, CategoryTypeWrapper:
	}
}

// consider plans a rename of old. conflict reports whether the new name
// would clash with an existing identifier.
func (r *renamer) consider(cat Category, role naming.Role, old string, at *cst.Node, conflict func(string) bool) {
	if _, planned := r.plan[old]; planned || r.rejected[old] || !r.tr.IsLegacy(old, role) {
		return
	}

	name, err := r.tr.Translate(old, role)

	switch {
	case err != nil:
		r.reject(cat, old, at, "%v", err)
	case name == old:
		r.rejected[old] = true
	case !cst.IsIdentifier(name):
		r.reject(cat, old, at, "%v: %q: %v", ErrUnconstructible, name, errNotIdent)
	case r.taken[name] != "" || conflict(name):
		r.reject(cat, old, at, "rename conflict: %q already in use", name)
	default:
		r.plan[old] = name
		r.taken[name] = old
		r.first[old] = at
		r.order = append(r.order, old)
	}
}

func (r *renamer) reject(cat Category, old string, at *cst.Node, format string, args ...any) {
	r.rejected[old] = true
	r.rep.Warn("%d:%d: %s: %s: %s", at.Start.Line+1, at.Start.Column+1, cat, old, fmt.Sprintf(format, args...))
}

func (r *renamer) set(n *cst.Node) {
	if name, ok := r.plan[n.Token]; ok {
		n.SetToken(name)
	}
}

// commit records one transformation per renamed name.
func (r *renamer) commit(cat Category) {
	for _, old := range r.order {
		at := r.first[old]
		r.rep.record(cat.String(), cat, at.Start.Line, at.Start.Column, old, r.plan[old])
	}
}

func (r *renamer) renameTypes() {
	existing := map[string]bool{}
	r.tree.Root.Walk(func(n *cst.Node) bool {
		switch {
		case n.Kind == cst.KindTypeIdentifier:
			existing[n.Token] = true
		case n.Kind == cst.KindIdentifier && isDeclName(n) && slices.Contains(cst.TypeDeclarationKinds, n.Parent().Kind):
			existing[n.Token] = true
		}

		return true
	})

	conflict := func(name string) bool { return existing[name] }

	for _, id := range identifiers(r.tree.Root) {
		if isDeclName(id) && slices.Contains(cst.TypeDeclarationKinds, id.Parent().Kind) {
			r.consider(CategoryRenameType, naming.RoleType, id.Token, id, conflict)
		}
	}

	r.tree.Root.Walk(func(n *cst.Node) bool {
		if n.Kind == cst.KindTypeIdentifier && !isQualifiedSegment(n) {
			r.consider(CategoryRenameType, naming.RoleType, n.Token, n, conflict)
		}

		return true
	})

	if len(r.plan) == 0 {
		return
	}

	r.tree.Root.Walk(func(n *cst.Node) bool {
		switch {
		case n.Kind == cst.KindTypeIdentifier:
			r.set(n)
		case n.Kind == cst.KindIdentifier && isDeclName(n):
			if p := n.Parent().Kind; p == cst.KindConstructorDecl || slices.Contains(cst.TypeDeclarationKinds, p) {
				r.set(n)
			}
		case n.Kind == cst.KindIdentifier && isQualifier(n) && !r.scopes.declares(n, n.Token):
			r.set(n)
		case n.Kind == cst.KindImportDeclaration:
			r.renameImport(n)

			return false
		}

		return true
	})

	for _, old := range r.order {
		r.rep.TypeRenames[old] = r.plan[old]
	}

	r.commit(CategoryRenameType)
}

// isQualifiedSegment reports whether n is a package segment of a qualified
// type such as the "java" in java.util.List.
func isQualifiedSegment(n *cst.Node) bool {
	p := n.Parent()

	return p != nil && p.Kind == "scoped_type_identifier" && n.Index() < len(p.Children)-1
}

// isQualifier reports whether n is the leading name of "n.member" or
// "n.method()", which may name a type for static access.
func isQualifier(n *cst.Node) bool {
	p := n.Parent()
	if p == nil || n.Index() != 0 || len(p.Children) < 2 || p.Children[1].Kind != "." {
		return false
	}

	return p.Kind == cst.KindFieldAccess || p.Kind == cst.KindMethodInvocation
}

// renameImport updates the last segment of a single-type import.
func (r *renamer) renameImport(imp *cst.Node) {
	if strings.HasPrefix(cst.ImportPath(imp), staticPrefix) {
		return
	}

	leaves := imp.Leaves()
	for i := len(leaves) - 1; i >= 0; i-- {
		if leaves[i].Kind == cst.KindIdentifier {
			r.set(leaves[i])

			return
		}

		if leaves[i].Kind == "asterisk" || leaves[i].Token == "*" {
			return
		}
	}
}

func methodName(n *cst.Node) *cst.Node {
	switch n.Kind {
	case cst.KindMethodDeclaration:
		return n.Child(cst.KindIdentifier)
	case cst.KindMethodInvocation:
		if c, ok := asCall(n); ok {
			return c.node.Children[len(c.node.Children)-2]
		}
	case "method_reference":
		last := n.Children[len(n.Children)-1]
		if last.Kind == cst.KindIdentifier {
			return last
		}
	}

	return nil
}

func (r *renamer) renameMethods() {
	declared := map[*cst.Node]map[string]bool{}
	all := map[string]bool{}

	r.tree.Root.Walk(func(n *cst.Node) bool {
		if n.Kind == cst.KindMethodDeclaration {
			if id := methodName(n); id != nil {
				body := n.Parent()
				if declared[body] == nil {
					declared[body] = map[string]bool{}
				}

				declared[body][id.Token] = true
				all[id.Token] = true
			}
		}

		return true
	})

	r.tree.Root.Walk(func(n *cst.Node) bool {
		if n.Kind != cst.KindMethodDeclaration {
			return true
		}

		if id := methodName(n); id != nil {
			siblings := declared[n.Parent()]
			r.consider(CategoryRenameMethod, naming.RoleMethod, id.Token, id, func(name string) bool {
				return siblings[name]
			})
		}

		return true
	})

	r.tree.Root.Walk(func(n *cst.Node) bool {
		if n.Kind == cst.KindMethodInvocation || n.Kind == "method_reference" {
			if id := methodName(n); id != nil {
				r.consider(CategoryRenameMethod, naming.RoleMethod, id.Token, id, func(name string) bool {
					return all[name]
				})
			}
		}

		return true
	})

	r.tree.Root.Walk(func(n *cst.Node) bool {
		switch n.Kind {
		case cst.KindMethodDeclaration, cst.KindMethodInvocation, "method_reference":
			if id := methodName(n); id != nil {
				r.set(id)
			}
		}

		return true
	})

	r.commit(CategoryRenameMethod)
}

func (r *renamer) renameFields() {
	used := map[string]bool{}

	for _, id := range identifiers(r.tree.Root) {
		if !isMemberName(id) || id.Parent().Kind == cst.KindFieldAccess {
			used[id.Token] = true
		}
	}

	conflict := func(name string) bool { return used[name] }

	var fieldNames []*cst.Node

	r.tree.Root.Walk(func(n *cst.Node) bool {
		if n.Kind == cst.KindFieldDeclaration {
			for _, decl := range n.ChildrenOf(cst.KindVariableDeclarator) {
				fieldNames = append(fieldNames, decl.Children[0])
			}
		}

		return true
	})

	for _, id := range fieldNames {
		r.consider(CategoryRenameField, naming.RoleField, id.Token, id, conflict)
	}

	refs := r.fieldReferences()
	for _, id := range refs {
		r.consider(CategoryRenameField, naming.RoleField, id.Token, id, conflict)
	}

	for _, id := range fieldNames {
		r.set(id)
	}

	for _, id := range refs {
		r.set(id)
	}

	r.commit(CategoryRenameField)
}

// fieldReferences returns member accesses and bare identifiers that can
// only resolve to a field: not a local or parameter of the enclosing
// method and not a type name used as a qualifier.
func (r *renamer) fieldReferences() []*cst.Node {
	var out []*cst.Node

	for _, id := range identifiers(r.tree.Root) {
		p := id.Parent()

		switch {
		case p.Kind == cst.KindFieldAccess && id.Index() > 0:
			out = append(out, id)
		case isReference(id) && !r.scopes.declares(id, id.Token):
			out = append(out, id)
		}
	}

	return out
}

func (r *renamer) renameParameters() {
	type param struct {
		name  *cst.Node
		scope *cst.Node
	}

	var params []param

	r.tree.Root.Walk(func(n *cst.Node) bool {
		if n.Kind != cst.KindFormalParameter {
			return true
		}

		list := n.Parent()
		if list == nil || list.Kind != cst.KindFormalParameters || list.Parent() == nil ||
			list.Parent().Kind == cst.KindRecordDeclaration {
			return true
		}

		if id := n.Child(cst.KindIdentifier); id != nil {
			params = append(params, param{name: id, scope: list.Parent()})
		}

		return true
	})

	for _, p := range params {
		old := p.name.Token
		used := map[string]bool{}

		for _, id := range identifiers(p.scope) {
			if isVariableDecl(id) || isReference(id) {
				used[id.Token] = true
			}
		}

		// Each parameter is planned on its own: the same legacy name in two
		// methods may resolve differently.
		r.reset()
		r.consider(CategoryRenameParameter, naming.RoleParameter, old, p.name, func(name string) bool {
			return used[name]
		})

		name, ok := r.plan[old]
		if !ok {
			continue
		}

		for _, id := range identifiers(p.scope) {
			if id.Token == old && (id == p.name || isReference(id)) {
				id.SetToken(name)
			}
		}

		r.rep.record(CategoryRenameParameter.String(), CategoryRenameParameter,
			p.name.Start.Line, p.name.Start.Column, old, name)
	}
}
