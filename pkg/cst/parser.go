package cst

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/alexaandru/go-sitter-forest/java"
	sitter "github.com/alexaandru/go-tree-sitter-bare"
)

// Sentinel errors for parsing.
var (
	// ErrSyntax is returned when the source does not parse cleanly.
	ErrSyntax = errors.New("cst: syntax error")
	// ErrInvalidSnippet is returned when a constructed snippet is not a
	// single well-formed construct of the requested shape.
	ErrInvalidSnippet = errors.New("cst: invalid snippet")

	errLanguageNotAvailable = errors.New("cst: java grammar not available")
	errNoRootNode           = errors.New("cst: no root node")
	errPoolType             = errors.New("cst: pool returned unexpected type")
)

// Snippet wrappers. The expression is parsed as a field initializer so any
// Java expression, assignments included, is accepted.
const (
	exprPrefix = "class __Snippet { Object __v = "
	exprSuffix = "; }"
)

var (
	languageOnce sync.Once
	javaLanguage *sitter.Language
)

func loadLanguage() *sitter.Language {
	languageOnce.Do(func() {
		defer func() {
			_ = recover() //nolint:errcheck // a missing grammar leaves javaLanguage nil
		}()

		javaLanguage = sitter.NewLanguage(java.GetLanguage())
	})

	return javaLanguage
}

// Parser turns Java source into Trees. It pools tree-sitter parsers and is
// safe for concurrent use.
type Parser struct {
	pool sync.Pool
}

// NewParser creates a Java parser.
func NewParser() (*Parser, error) {
	lang := loadLanguage()
	if lang == nil {
		return nil, errLanguageNotAvailable
	}

	return &Parser{
		pool: sync.Pool{
			New: func() any {
				tsParser := sitter.NewParser()
				tsParser.SetLanguage(lang)

				return tsParser
			},
		},
	}, nil
}

// SyntaxError locates the first malformed region of a source.
type SyntaxError struct {
	Pos Point
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%v at %d:%d", ErrSyntax, e.Pos.Line+1, e.Pos.Column+1)
}

// Unwrap makes errors.Is(err, ErrSyntax) hold.
func (e *SyntaxError) Unwrap() error {
	return ErrSyntax
}

// Parse parses a compilation unit. Source with syntax errors yields a
// *SyntaxError and no tree.
func (p *Parser) Parse(ctx context.Context, src []byte) (*Tree, error) {
	tree, pos, err := p.parse(ctx, src)
	if err != nil {
		return nil, err
	}

	if pos != nil {
		return nil, &SyntaxError{Pos: *pos}
	}

	return tree, nil
}

// ParseTolerant parses a compilation unit and keeps ERROR nodes. The
// returned error is a *SyntaxError when the source is malformed, alongside
// a usable tree.
func (p *Parser) ParseTolerant(ctx context.Context, src []byte) (*Tree, error) {
	tree, pos, err := p.parse(ctx, src)
	if err != nil {
		return nil, err
	}

	if pos != nil {
		return tree, &SyntaxError{Pos: *pos}
	}

	return tree, nil
}

func (p *Parser) parse(ctx context.Context, src []byte) (*Tree, *Point, error) {
	tsParser, ok := p.pool.Get().(*sitter.Parser)
	if !ok {
		return nil, nil, errPoolType
	}

	defer p.pool.Put(tsParser)

	tsTree, err := tsParser.ParseString(ctx, nil, src)
	if err != nil {
		return nil, nil, fmt.Errorf("cst: parse: %w", err)
	}
	defer tsTree.Close()

	root := tsTree.RootNode()
	if root.IsNull() {
		return nil, nil, errNoRootNode
	}

	b := builder{src: src}
	tree := &Tree{Root: b.build(root)}
	tree.Trailer = string(src[b.pos:])

	if root.HasError() {
		pos := firstError(root)

		return tree, &pos, nil
	}

	return tree, nil, nil
}

// ParseExpression parses text as a single Java expression and returns it
// detached from any tree.
func (p *Parser) ParseExpression(ctx context.Context, text string) (*Node, error) {
	tree, err := p.Parse(ctx, []byte(exprPrefix+text+exprSuffix))
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidSnippet, text, err)
	}

	decls := collect(tree.Root, KindVariableDeclarator)
	if len(decls) != 1 {
		return nil, fmt.Errorf("%w: %q is not a single expression", ErrInvalidSnippet, text)
	}

	decl := decls[0]
	expr := decl.Children[len(decl.Children)-1]

	if expr.Text() != strings.TrimSpace(text) {
		return nil, fmt.Errorf("%w: %q is not a single expression", ErrInvalidSnippet, text)
	}

	expr.parent = nil

	return expr, nil
}

// ParseImport builds an import declaration for path, e.g. "java.math.RoundingMode".
func (p *Parser) ParseImport(ctx context.Context, path string) (*Node, error) {
	tree, err := p.Parse(ctx, []byte("import "+path+";"))
	if err != nil {
		return nil, fmt.Errorf("%w: import %q: %w", ErrInvalidSnippet, path, err)
	}

	imports := tree.Root.ChildrenOf(KindImportDeclaration)
	if len(imports) != 1 {
		return nil, fmt.Errorf("%w: import %q", ErrInvalidSnippet, path)
	}

	imp := imports[0]
	imp.parent = nil

	return imp, nil
}

func collect(root *Node, kind string) []*Node {
	var out []*Node

	root.Walk(func(n *Node) bool {
		if n.Kind == kind {
			out = append(out, n)
		}

		return true
	})

	return out
}

// builder converts a tree-sitter tree, assigning each gap in the source to
// the leaf that follows it.
type builder struct {
	src []byte
	pos uint
}

func (b *builder) build(tsNode sitter.Node) *Node {
	start := tsNode.StartPoint()
	n := &Node{
		Kind:  tsNode.Type(),
		Named: tsNode.IsNamed(),
		Start: Point{Line: int(start.Row), Column: int(start.Column)},
	}

	count := tsNode.ChildCount()
	if count == 0 {
		begin, end := tsNode.StartByte(), tsNode.EndByte()
		if begin < b.pos {
			begin = b.pos
		}

		n.Lead = string(b.src[b.pos:begin])
		n.Token = string(b.src[begin:end])
		b.pos = max(b.pos, end)

		return n
	}

	n.Children = make([]*Node, 0, count)

	for i := range count {
		child := tsNode.Child(i)
		if child.IsNull() || (child.ChildCount() == 0 && child.StartByte() == child.EndByte()) {
			continue
		}

		n.Children = append(n.Children, b.build(child))
	}

	adopt(n)

	return n
}

func firstError(root sitter.Node) Point {
	var (
		found Point
		done  bool
	)

	var visit func(sitter.Node)

	visit = func(n sitter.Node) {
		if done || !n.HasError() && n.Type() != "ERROR" {
			return
		}

		if n.Type() == "ERROR" || n.IsMissing() {
			start := n.StartPoint()
			found = Point{Line: int(start.Row), Column: int(start.Column)}
			done = true

			return
		}

		for i := range n.ChildCount() {
			visit(n.Child(i))
		}
	}

	visit(root)

	return found
}
