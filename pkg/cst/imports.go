package cst

import (
	"context"
	"strings"
)

// ImportPath returns the imported name of an import declaration, e.g.
// "java.math.RoundingMode", "java.math.*" or "static a.B.c".
func ImportPath(imp *Node) string {
	c := imp.Canonical()
	c = strings.TrimPrefix(c, "import")
	c = strings.TrimSuffix(c, ";")

	return strings.TrimSpace(c)
}

// Imports returns the import declarations of the compilation unit.
func (t *Tree) Imports() []*Node {
	return t.Root.ChildrenOf(KindImportDeclaration)
}

// PackageName returns the declared package, or "".
func (t *Tree) PackageName() string {
	pkg := t.Root.Child(KindPackageDeclaration)
	if pkg == nil {
		return ""
	}

	name := strings.TrimPrefix(pkg.Canonical(), "package")
	name = strings.TrimSuffix(name, ";")

	return strings.TrimSpace(name)
}

// HasImport reports whether path is visible without qualification: imported
// directly, covered by a wildcard import, in java.lang, or in the unit's
// own package.
func (t *Tree) HasImport(path string) bool {
	pkg, _ := splitQualified(path)
	if pkg == "java.lang" || pkg == t.PackageName() {
		return true
	}

	for _, imp := range t.Imports() {
		got := ImportPath(imp)
		if got == path || got == pkg+".*" {
			return true
		}
	}

	return false
}

// EnsureImport adds "import path;" unless HasImport already holds. It
// reports whether the tree changed.
func (p *Parser) EnsureImport(ctx context.Context, t *Tree, path string) (bool, error) {
	if t.HasImport(path) {
		return false, nil
	}

	imp, err := p.ParseImport(ctx, path)
	if err != nil {
		return false, err
	}

	root := t.Root

	if imports := t.Imports(); len(imports) > 0 {
		last := imports[len(imports)-1]
		imp.FirstLeaf().Lead = "\n"

		return true, t.Insert(root, last.Index()+1, imp)
	}

	if pkg := root.Child(KindPackageDeclaration); pkg != nil {
		imp.FirstLeaf().Lead = "\n\n"

		return true, t.Insert(root, pkg.Index()+1, imp)
	}

	idx := 0
	for idx < len(root.Children) && root.Children[idx].IsComment() {
		idx++
	}

	if idx < len(root.Children) {
		next := root.Children[idx].FirstLeaf()
		imp.FirstLeaf().Lead = next.Lead
		next.Lead = "\n\n"
	}

	return true, t.Insert(root, idx, imp)
}

// SimpleName returns the last segment of a qualified name.
func SimpleName(qualified string) string {
	_, name := splitQualified(qualified)

	return name
}

func splitQualified(path string) (string, string) {
	i := strings.LastIndexByte(path, '.')
	if i < 0 {
		return "", path
	}

	return path[:i], path[i+1:]
}
